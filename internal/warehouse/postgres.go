package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/dtconn-relay/internal/models"
)

// Postgres appends rows to a Postgres table, for self-hosted deployments
// and local development. The dataset id is used as the schema name.
//
// The table is expected to exist with a unique constraint on event_id;
// without one, redelivered events are stored twice.
type Postgres struct {
	pool      *pgxpool.Pool
	insertSQL string
}

// NewPostgres creates a connection pool and fails fast if the database is unreachable.
func NewPostgres(ctx context.Context, dbURL, schema, table string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	return &Postgres{pool: pool, insertSQL: insertStatement(schema, table)}, nil
}

// Insert writes the row; a row whose event_id already exists is silently skipped.
func (p *Postgres) Insert(ctx context.Context, row models.Row) error {
	if _, err := p.pool.Exec(ctx, p.insertSQL, row.Values()...); err != nil {
		return errors.Wrapf(err, "insert row %q", row.InsertID())
	}
	return nil
}

// Ping is used by the readiness endpoint to validate DB connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// insertStatement builds the parameterized INSERT for the fixed row layout.
// Identifiers are quoted so dataset and table names cannot inject SQL.
func insertStatement(schema, table string) string {
	cols := models.Columns()
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING",
		pgx.Identifier{schema, table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

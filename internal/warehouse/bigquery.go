package warehouse

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/dtconn-relay/internal/models"
)

// BigQuery streams rows into a table through the insertAll API.
type BigQuery struct {
	client   *bigquery.Client
	table    *bigquery.Table
	inserter *bigquery.Inserter
}

// NewBigQuery creates a client using application default credentials.
func NewBigQuery(ctx context.Context, projectID, datasetID, tableID string) (*BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "create bigquery client")
	}

	table := client.Dataset(datasetID).Table(tableID)
	return &BigQuery{
		client:   client,
		table:    table,
		inserter: table.Inserter(),
	}, nil
}

// Insert sends a single row. Per-row rejections come back as a
// bigquery.PutMultiError wrapped in the returned error.
func (b *BigQuery) Insert(ctx context.Context, row models.Row) error {
	if err := b.inserter.Put(ctx, rowSaver{row: row}); err != nil {
		return errors.Wrapf(err, "insert row %q into %s.%s", row.InsertID(), b.table.DatasetID, b.table.TableID)
	}
	return nil
}

// Ping fetches the table metadata, which fails on bad credentials or a missing table.
func (b *BigQuery) Ping(ctx context.Context) error {
	if _, err := b.table.Metadata(ctx); err != nil {
		return errors.Wrap(err, "bigquery table metadata")
	}
	return nil
}

func (b *BigQuery) Close() error {
	return b.client.Close()
}

// rowSaver hands BigQuery the row and its insert id.
type rowSaver struct {
	row models.Row
}

func (s rowSaver) Save() (map[string]bigquery.Value, string, error) {
	values := s.row.Values()
	out := make(map[string]bigquery.Value, len(values))
	for i, col := range models.Columns() {
		out[col] = values[i]
	}
	return out, s.row.InsertID(), nil
}

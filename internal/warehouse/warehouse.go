// Package warehouse appends projected rows to the destination table.
package warehouse

import (
	"context"

	"github.com/PratikDhanave/dtconn-relay/internal/models"
)

// Warehouse is the authenticated handle used by the ingestion pipeline.
// Implementations must be safe for concurrent use.
type Warehouse interface {
	// Insert appends one row, using row.InsertID() as the deduplication key.
	Insert(ctx context.Context, row models.Row) error
	// Ping checks that the destination table is reachable.
	Ping(ctx context.Context) error
	Close() error
}

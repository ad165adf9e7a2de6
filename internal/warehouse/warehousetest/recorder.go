// Package warehousetest provides an in-memory warehouse for tests.
package warehousetest

import (
	"context"
	"sync"

	"github.com/PratikDhanave/dtconn-relay/internal/models"
)

// Recorder records every Insert call. OnInsert, when set, runs after the
// row is recorded and its result is returned to the caller.
type Recorder struct {
	OnInsert func(ctx context.Context, row models.Row) error
	PingErr  error

	mu   sync.Mutex
	rows []models.Row
}

func (r *Recorder) Insert(ctx context.Context, row models.Row) error {
	r.mu.Lock()
	r.rows = append(r.rows, row)
	r.mu.Unlock()

	if r.OnInsert != nil {
		return r.OnInsert(ctx, row)
	}
	return nil
}

func (r *Recorder) Ping(context.Context) error {
	return r.PingErr
}

func (r *Recorder) Close() error {
	return nil
}

// Rows returns a copy of the recorded rows in call order.
func (r *Recorder) Rows() []models.Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Row(nil), r.rows...)
}

package warehouse

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PratikDhanave/dtconn-relay/internal/config"
)

// Open builds the warehouse client selected by cfg.WarehouseDriver.
func Open(ctx context.Context, cfg config.Config) (Warehouse, error) {
	switch cfg.WarehouseDriver {
	case config.DriverBigQuery:
		bq, err := NewBigQuery(ctx, cfg.ProjectID, cfg.DatasetID, cfg.TableID)
		if err != nil {
			return nil, err
		}
		return bq, nil
	case config.DriverPostgres:
		pg, err := NewPostgres(ctx, cfg.DBURL, cfg.DatasetID, cfg.TableID)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, errors.Errorf("unknown warehouse driver %q", cfg.WarehouseDriver)
	}
}

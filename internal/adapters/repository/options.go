package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/canteen/pkg/metrics"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open builds a store for the given driver. path is only used by sqlite.
func Open(ctx context.Context, driver, path string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemStore(), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// observe records the latency of a store operation; call via defer.
func observe(op string, start time.Time) {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
}

package repository

import (
	"context"
	"fmt"
)

// Open creates the store for driver: "memory", "sqlite" (dsn is a file
// path) or "postgres" (dsn is a connection URL).
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, dsn, opts...)
	case "postgres":
		return NewPostgres(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

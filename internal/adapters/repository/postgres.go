package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/pkg/logger"
)

// PostgresStore writes to Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgres connects to dsn and pings the server.
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{pool: pool, opts: o}, nil
}

// Replace implements Store.
func (s *PostgresStore) Replace(ctx context.Context, table string, p Partition, f *frame.Frame) (n int, err error) {
	start := time.Now()
	defer func() { record(table, start, n, err) }()

	del, err := deleteSQL(table, p, dollar)
	if err != nil {
		return 0, err
	}
	ins, err := insertSQL(table, f.Columns, dollar)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.opts.createTables && len(f.Columns) > 0 {
		ddl, err := createSQL(table, f, true)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return 0, fmt.Errorf("creating %s: %w", table, err)
		}
	}

	tag, err := tx.Exec(ctx, del, p.Args()...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", table, err)
	}

	if f.Len() > 0 {
		batch := &pgx.Batch{}
		for _, row := range f.Rows {
			batch.Queue(ins, row...)
		}
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < f.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return 0, fmt.Errorf("inserting row %d into %s: %w", i, table, err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, fmt.Errorf("closing batch for %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing %s: %w", table, err)
	}
	s.opts.logger.Debug(ctx, "replaced partition",
		logger.String("table", table),
		logger.Int64("deleted", tag.RowsAffected()),
		logger.Int("inserted", f.Len()))
	return f.Len(), nil
}

// Recreate implements Recreator.
func (s *PostgresStore) Recreate(ctx context.Context, table string, f *frame.Frame) error {
	drop, err := dropSQL(table)
	if err != nil {
		return err
	}
	create, err := createSQL(table, f, false)
	if err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, drop); err != nil {
		return fmt.Errorf("dropping %s: %w", table, err)
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}
	return tx.Commit(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

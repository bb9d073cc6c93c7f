package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/pkg/logger"
)

// SQLStore writes to a database/sql SQLite database.
type SQLStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// every connection to :memory: is a different database
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &SQLStore{db: db, opts: o}, nil
}

// DB exposes the handle for reads.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Replace implements Store.
func (s *SQLStore) Replace(ctx context.Context, table string, p Partition, f *frame.Frame) (n int, err error) {
	start := time.Now()
	defer func() { record(table, start, n, err) }()

	del, err := deleteSQL(table, p, question)
	if err != nil {
		return 0, err
	}
	ins, err := insertSQL(table, f.Columns, question)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.opts.createTables && len(f.Columns) > 0 {
		ddl, err := createSQL(table, f, true)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return 0, fmt.Errorf("creating %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, del, p.Args()...)
	if err != nil {
		return 0, fmt.Errorf("deleting from %s: %w", table, err)
	}

	if f.Len() > 0 {
		stmt, err := tx.PrepareContext(ctx, ins)
		if err != nil {
			return 0, fmt.Errorf("preparing insert into %s: %w", table, err)
		}
		defer func() { _ = stmt.Close() }()
		for i, row := range f.Rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return 0, fmt.Errorf("inserting row %d into %s: %w", i, table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing %s: %w", table, err)
	}
	deleted, _ := res.RowsAffected()
	s.opts.logger.Debug(ctx, "replaced partition",
		logger.String("table", table),
		logger.Int64("deleted", deleted),
		logger.Int("inserted", f.Len()))
	return f.Len(), nil
}

// Recreate implements Recreator.
func (s *SQLStore) Recreate(ctx context.Context, table string, f *frame.Frame) error {
	drop, err := dropSQL(table)
	if err != nil {
		return err
	}
	create, err := createSQL(table, f, false)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("dropping %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}
	return tx.Commit()
}

// Close implements Store.
func (s *SQLStore) Close() error { return s.db.Close() }

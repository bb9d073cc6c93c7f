// Package repository holds the sinks collectors write frames to: Postgres for
// production, SQLite for local runs and an in-memory store for tests.
package repository

import (
	"context"
	"time"

	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/pkg/metrics"
)

// Filter restricts a replace to rows where Column equals Value.
type Filter struct {
	Column string
	Value  any
}

// Partition is the set of rows a replace owns. An empty partition is the
// whole table.
type Partition []Filter

// Where starts a partition.
func Where(column string, value any) Partition {
	return Partition{{Column: column, Value: value}}
}

// And adds a filter.
func (p Partition) And(column string, value any) Partition {
	return append(p[:len(p):len(p)], Filter{Column: column, Value: value})
}

// Columns returns the filtered column names in order.
func (p Partition) Columns() []string {
	out := make([]string, len(p))
	for i, f := range p {
		out[i] = f.Column
	}
	return out
}

// Args returns the filter values in order.
func (p Partition) Args() []any {
	out := make([]any, len(p))
	for i, f := range p {
		out[i] = f.Value
	}
	return out
}

// Store replaces the rows of a table partition with a frame.
type Store interface {
	// Replace deletes the partition and inserts every row of f in one
	// transaction. It returns the number of rows inserted.
	Replace(ctx context.Context, table string, p Partition, f *frame.Frame) (int, error)
	// Close releases connections.
	Close() error
}

// Recreator is implemented by stores that can drop and recreate a table
// with column types inferred from a frame.
type Recreator interface {
	Recreate(ctx context.Context, table string, f *frame.Frame) error
}

func record(table string, start time.Time, rows int, err error) {
	metrics.RecordSinkWrite(table, rows, time.Since(start), err)
}

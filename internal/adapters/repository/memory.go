package repository

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/okian/wolfwise/internal/domain/frame"
)

// MemoryStore keeps tables in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]map[string]any
	closed bool
}

// NewMemory creates an empty store.
func NewMemory() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]map[string]any)}
}

// Replace implements Store.
func (s *MemoryStore) Replace(ctx context.Context, table string, p Partition, f *frame.Frame) (n int, err error) {
	start := time.Now()
	defer func() { record(table, start, n, err) }()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := quote(table); err != nil {
		return 0, err
	}
	if _, err := quoteAll(p.Columns()); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	kept := s.tables[table][:0:0]
	for _, row := range s.tables[table] {
		if !matches(row, p) {
			kept = append(kept, row)
		}
	}
	s.tables[table] = append(kept, f.Records()...)
	return f.Len(), nil
}

// Recreate implements Recreator.
func (s *MemoryStore) Recreate(ctx context.Context, table string, _ *frame.Frame) error {
	if _, err := quote(table); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.tables[table] = nil
	return ctx.Err()
}

// Rows returns a copy of the table's rows in insertion order.
func (s *MemoryStore) Rows(table string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]any, len(s.tables[table]))
	for i, r := range s.tables[table] {
		out[i] = maps.Clone(r)
	}
	return out
}

// Tables returns the number of tables written so far.
func (s *MemoryStore) Tables() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func matches(row map[string]any, p Partition) bool {
	for _, f := range p {
		if frame.String(row[f.Column]) != frame.String(f.Value) {
			return false
		}
	}
	return true
}

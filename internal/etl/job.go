// Package etl holds the collectors: each pulls one slice of basketball data
// from a source, shapes it into frames and replaces its tables in a store.
package etl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/wolfwise/pkg/logger"
	"github.com/okian/wolfwise/pkg/metrics"
)

// Job is a named collector.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry maps names to jobs, keeping registration order.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]Job
	order  []string
	logger logger.Logger
}

// NewRegistry creates a registry holding jobs. It panics on duplicate names.
func NewRegistry(l logger.Logger, jobs ...Job) *Registry {
	if l == nil {
		l = logger.Nop()
	}
	r := &Registry{jobs: make(map[string]Job), logger: l}
	for _, j := range jobs {
		if err := r.Register(j); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a job.
func (r *Registry) Register(j Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, j.Name())
	}
	r.jobs[j.Name()] = j
	r.order = append(r.order, j.Name())
	return nil
}

// Get returns the job called name.
func (r *Registry) Get(name string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return j, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Names lists job names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Run runs the named job, recording its duration and outcome.
func (r *Registry) Run(ctx context.Context, name string) error {
	j, err := r.Get(name)
	if err != nil {
		return err
	}
	start := time.Now()
	r.logger.Info(ctx, "job started", logger.String("job", name))
	err = j.Run(ctx)
	took := time.Since(start)
	metrics.RecordJobRun(name, took, err)
	if err != nil {
		r.logger.Error(ctx, "job failed", logger.String("job", name), logger.Duration("took", took), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	r.logger.Info(ctx, "job finished", logger.String("job", name), logger.Duration("took", took))
	return nil
}

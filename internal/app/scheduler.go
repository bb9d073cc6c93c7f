package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/wolfwise/pkg/logger"
)

// Enqueuer is the part of Service the scheduler drives.
type Enqueuer interface {
	RunJob(ctx context.Context, name string) (EnqueueResult, error)
}

// Scheduler enqueues the in-game job on one cron spec and every other job on
// another.
type Scheduler struct {
	cron   *cron.Cron
	target Enqueuer
	logger logger.Logger
}

// NewScheduler registers the schedules. An empty spec disables that
// schedule.
func NewScheduler(target Enqueuer, tz, inGameSpec, batchSpec, inGameJob string, batchJobs []string, l logger.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		l.Warn(context.Background(), "unknown timezone, falling back to EST",
			logger.String("timezone", tz), logger.Error(err))
		loc = time.FixedZone("EST", -5*60*60)
	}
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		target: target,
		logger: l,
	}
	if inGameSpec != "" {
		if _, err := s.cron.AddFunc(inGameSpec, func() { s.enqueue(inGameJob) }); err != nil {
			return nil, fmt.Errorf("in-game schedule %q: %w", inGameSpec, err)
		}
	}
	if batchSpec != "" && len(batchJobs) > 0 {
		jobs := append([]string(nil), batchJobs...)
		if _, err := s.cron.AddFunc(batchSpec, func() {
			for _, name := range jobs {
				s.enqueue(name)
			}
		}); err != nil {
			return nil, fmt.Errorf("batch schedule %q: %w", batchSpec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) enqueue(name string) {
	ctx := context.Background()
	res, err := s.target.RunJob(ctx, name)
	if err != nil {
		s.logger.Error(ctx, "scheduled job not queued", logger.String("job", name), logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "scheduled job", logger.String("job", name), logger.String("result", res.String()))
}

// Entries returns how many schedules are registered.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// Start runs the schedules in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the schedules and waits for running callbacks.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

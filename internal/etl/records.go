package etl

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/pkg/logger"
)

// TableRecords holds all-time and season leaderboards.
const TableRecords = "nba_records"

// Records scrapes the configured leaders pages into one table.
type Records struct {
	source   RecordsSource
	store    repository.Store
	settings Settings
	sleep    func(context.Context, time.Duration) error
	logger   logger.Logger
}

// RecordsOption configures Records.
type RecordsOption func(*Records)

// WithSleep replaces the pause between pages.
func WithSleep(fn func(context.Context, time.Duration) error) RecordsOption {
	return func(r *Records) { r.sleep = fn }
}

// WithRecordsLogger sets the logger.
func WithRecordsLogger(l logger.Logger) RecordsOption {
	return func(r *Records) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecords creates the collector.
func NewRecords(source RecordsSource, store repository.Store, s Settings, opts ...RecordsOption) *Records {
	r := &Records{source: source, store: store, settings: s, sleep: sleepCtx, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Job.
func (c *Records) Name() string { return "records" }

// Run implements Job. Pages that fail are logged and skipped; the table is
// only replaced when at least one page parsed.
func (c *Records) Run(ctx context.Context) error {
	var all []reference.Record
	for i, p := range c.settings.RecordsPages {
		recs, err := c.source.Records(ctx, p)
		if err != nil {
			c.logger.Error(ctx, "scraping records page failed", logger.String("url", p.URL), logger.Error(err))
		} else {
			all = append(all, recs...)
			c.logger.Debug(ctx, "scraped records page", logger.String("url", p.URL), logger.Int("rows", len(recs)))
		}
		if i < len(c.settings.RecordsPages)-1 {
			if err := c.sleep(ctx, c.delay()); err != nil {
				return err
			}
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("records: %w", ErrNoData)
	}

	f := reference.ToFrame(all)
	f.WithColumn("id", func(int) any { return uuid.NewString() })
	n, err := c.store.Replace(ctx, TableRecords, nil, f)
	if err != nil {
		return err
	}
	c.logger.Info(ctx, "records written", logger.Int("rows", n))
	return nil
}

func (c *Records) delay() time.Duration {
	lo, hi := c.settings.RecordsDelayLo, c.settings.RecordsDelayHi
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

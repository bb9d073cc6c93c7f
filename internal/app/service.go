// Package service wires configuration, sources, collectors, the job queue and
// the worker pool into the WolfWise service used by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/okian/wolfwise/internal/adapters/cache"
	"github.com/okian/wolfwise/internal/adapters/fetch"
	"github.com/okian/wolfwise/internal/adapters/mq/queue"
	"github.com/okian/wolfwise/internal/adapters/mq/worker"
	"github.com/okian/wolfwise/internal/adapters/nbalive"
	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/config"
	"github.com/okian/wolfwise/internal/domain/dedupe"
	"github.com/okian/wolfwise/internal/domain/lineup"
	"github.com/okian/wolfwise/internal/domain/model"
	"github.com/okian/wolfwise/internal/etl"
	"github.com/okian/wolfwise/pkg/logger"
	"github.com/okian/wolfwise/pkg/metrics"
)

const shutdownTimeout = 30 * time.Second

var gameIDPattern = regexp.MustCompile(`^\d{10}$`)

// EnqueueResult says what happened to a submitted job.
type EnqueueResult int

const (
	// Accepted means the job was queued.
	Accepted EnqueueResult = iota
	// Duplicate means an equivalent job is already pending.
	Duplicate
	// Rejected means the queue is full or closed.
	Rejected
)

func (r EnqueueResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	default:
		return "rejected"
	}
}

// Service owns every long-lived component.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Sources and sinks; any left nil by options are built from cfg.
	live      etl.LiveSource
	stats     etl.StatsSource
	records   etl.RecordsSource
	publisher etl.LineupPublisher
	store     repository.Store
	lineups   *cache.LineupCache

	inGame    *etl.InGame
	registry  *etl.Registry
	deduper   dedupe.Deduper
	jobQueue  *queue.InMemoryQueue
	pool      *worker.Pool
	results   *resultCache
	scheduler *Scheduler

	noScheduler bool
	initialized bool
	started     bool
	stopped     bool

	logger logger.Logger
}

// New constructs a service for cfg. Nothing is connected until Init or
// Start.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init opens the store, builds the sources and registers the collectors.
// The CLI stops here and calls Execute; the server goes on to Start.
func (s *Service) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init(ctx)
}

func (s *Service) init(ctx context.Context) error {
	if s.stopped {
		return ErrStopped
	}
	if s.initialized {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	settings, err := etl.SettingsFrom(s.cfg, time.Now)
	if err != nil {
		return err
	}

	if s.store == nil {
		dsn := s.cfg.DatabaseURL
		if s.cfg.StoreDriver == config.DriverSQLite {
			dsn = s.cfg.SQLitePath
		}
		store, err := repository.Open(ctx, s.cfg.StoreDriver, dsn,
			repository.WithLogger(s.logger.Named("repository")))
		if err != nil {
			return fmt.Errorf("opening %s store: %w", s.cfg.StoreDriver, err)
		}
		s.store = store
	}
	s.buildSources()
	if s.publisher == nil && s.cfg.RedisURL != "" {
		client, err := cache.Dial(ctx, s.cfg.RedisURL)
		if err != nil {
			// lineups still reach the store; the cache is optional
			s.logger.Warn(ctx, "redis unavailable, lineup cache disabled", logger.Error(err))
		} else {
			s.lineups = cache.New(client,
				cache.WithTTL(s.cfg.LineupCacheTTL()),
				cache.WithLogger(s.logger.Named("cache")))
			s.publisher = s.lineups
		}
	}

	s.results = newResultCache(s.cfg.ResultCacheSize)
	inGameOpts := []etl.InGameOption{
		etl.WithResultHook(s.results.put),
		etl.WithInGameLogger(s.logger.Named("in_game")),
	}
	if s.publisher != nil {
		inGameOpts = append(inGameOpts, etl.WithPublisher(s.publisher))
	}
	s.inGame = etl.NewInGame(s.live, s.stats, s.store, settings, inGameOpts...)

	s.registry = etl.NewRegistry(s.logger.Named("jobs"),
		s.inGame,
		etl.NewLineupStats(s.stats, s.store, settings, s.logger.Named("lineup_stats")),
		etl.NewLeaders(s.stats, s.store, settings, s.logger.Named("leaders")),
		etl.NewHustle(s.stats, s.store, settings, s.logger.Named("hustle")),
		etl.NewPlayerStats(s.stats, s.store, settings, s.logger.Named("player_stats")),
		etl.NewRecords(s.records, s.store, settings, etl.WithRecordsLogger(s.logger.Named("records"))),
	)

	s.initialized = true
	s.logger.Info(ctx, "service initialized",
		logger.String("team", settings.TeamTricode),
		logger.String("season", settings.CurrentSeason()),
		logger.String("store", s.cfg.StoreDriver),
		logger.Bool("lineup_cache", s.publisher != nil))
	return nil
}

func (s *Service) buildSources() {
	retry := fetch.WithRetry(s.cfg.RetryAttempts, s.cfg.RetryBaseDelay())
	timeout := fetch.WithTimeout(s.cfg.HTTPTimeout())
	if s.live == nil {
		c := fetch.New("nba_live", timeout, retry,
			fetch.WithUserAgent(s.cfg.UserAgent),
			fetch.WithLogger(s.logger.Named("fetch")))
		s.live = nbalive.New(s.cfg.LiveBaseURL, c)
	}
	if s.stats == nil {
		opts := append([]fetch.Option{timeout, retry, fetch.WithLogger(s.logger.Named("fetch"))}, statsapi.FetchOptions()...)
		s.stats = statsapi.New(s.cfg.StatsBaseURL, fetch.New("nba_stats", opts...))
	}
	if s.records == nil {
		opts := append([]fetch.Option{timeout, retry,
			fetch.WithUserAgent(s.cfg.UserAgent),
			fetch.WithLogger(s.logger.Named("fetch"))}, reference.FetchOptions()...)
		s.records = reference.New(fetch.New("reference", opts...))
	}
}

// Start initializes the service, starts the worker pool and, unless
// disabled, the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.init(ctx); err != nil {
		return err
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.JobQueueSize))
	s.pool = worker.NewPool(s.cfg.WorkerCount, s.jobQueue, worker.RunnerFunc(s.process),
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithJobTimeout(s.cfg.JobTimeout()))
	s.pool.Start(ctx)

	if !s.noScheduler {
		var batch []string
		for _, name := range s.registry.Names() {
			if name != s.inGame.Name() {
				batch = append(batch, name)
			}
		}
		sched, err := NewScheduler(s, s.cfg.Timezone, s.cfg.ScheduleInGame, s.cfg.ScheduleBatch,
			s.inGame.Name(), batch, s.logger.Named("scheduler"))
		if err != nil {
			_ = s.pool.Shutdown(ctx)
			return err
		}
		s.scheduler = sched
		s.scheduler.Start()
	}

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.jobQueue.Capacity()),
		logger.Int("dedupe_size", s.cfg.DedupeSize))
	return nil
}

// Stop gracefully shuts down the scheduler, the workers and the store. A
// stopped service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.initialized || s.stopped {
		s.mu.Unlock()
		return
	}
	sched, pool := s.scheduler, s.pool
	s.scheduler, s.pool = nil, nil
	s.started = false
	s.stopped = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping service...")

	// scheduled callbacks take the read lock, so wait for them unlocked
	if sched != nil {
		sched.Stop(ctx)
	}
	// the pool bounds its own drain by the job timeout
	if pool != nil {
		if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lineups != nil {
		_ = s.lineups.Close()
		s.lineups = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "closing store", logger.Error(err))
		}
	}
	s.logger.Info(ctx, "service stopped")
}

// Enqueue submits a job for asynchronous processing. A job whose key is
// already pending is reported as Duplicate and dropped.
func (s *Service) Enqueue(ctx context.Context, job model.Job) (EnqueueResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return Rejected, ErrNotStarted
	}

	key := job.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		s.logger.Debug(ctx, "duplicate job skipped", logger.String("key", key))
		return Duplicate, nil
	}
	if !s.jobQueue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, key)
		s.logger.Warn(ctx, "job queue full", logger.String("key", key))
		return Rejected, nil
	}
	s.logger.Debug(ctx, "job queued", logger.String("key", key), logger.String("id", job.ID))
	return Accepted, nil
}

// RefreshGame queues a refresh of one game.
func (s *Service) RefreshGame(ctx context.Context, gameID string) (EnqueueResult, error) {
	if !gameIDPattern.MatchString(gameID) {
		return Rejected, fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}
	return s.Enqueue(ctx, model.NewGameJob(gameID))
}

// RunJob queues the named collector.
func (s *Service) RunJob(ctx context.Context, name string) (EnqueueResult, error) {
	reg, err := s.jobs()
	if err != nil {
		return Rejected, err
	}
	if !reg.Has(name) {
		return Rejected, fmt.Errorf("%w: %s", etl.ErrUnknownJob, name)
	}
	return s.Enqueue(ctx, model.NewBatchJob(name))
}

// Execute runs job synchronously, bypassing the queue.
func (s *Service) Execute(ctx context.Context, job model.Job) error {
	s.mu.RLock()
	ready := s.initialized && !s.stopped
	s.mu.RUnlock()
	if !ready {
		return ErrNotStarted
	}
	return s.run(ctx, job)
}

// process is the worker pool's runner: it runs the job and releases its key.
func (s *Service) process(ctx context.Context, job model.Job) error {
	defer s.deduper.Unrecord(context.WithoutCancel(ctx), job.Key())
	return s.run(ctx, job)
}

func (s *Service) run(ctx context.Context, job model.Job) error {
	switch job.Kind {
	case model.JobGame:
		if !gameIDPattern.MatchString(job.GameID) {
			return fmt.Errorf("%w: %q", ErrInvalidGameID, job.GameID)
		}
		_, err := s.inGame.RunGame(ctx, job.GameID)
		return err
	case model.JobBatch:
		return s.registry.Run(ctx, job.Name)
	default:
		return fmt.Errorf("%w: kind %q", etl.ErrUnknownJob, job.Kind)
	}
}

// Jobs lists the registered collector names.
func (s *Service) Jobs() []string {
	reg, err := s.jobs()
	if err != nil {
		return nil
	}
	return reg.Names()
}

func (s *Service) jobs() (*etl.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registry == nil {
		return nil, ErrNotStarted
	}
	return s.registry, nil
}

// LatestResult returns the most recent reconstruction of gameID.
func (s *Service) LatestResult(gameID string) (lineup.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.results == nil {
		return lineup.Result{}, false
	}
	return s.results.get(gameID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.JobQueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
		"team":        s.cfg.TeamTricode,
		"store":       s.cfg.StoreDriver,
	}
	if s.registry != nil {
		stats["jobs"] = s.registry.Names()
	}
	if s.results != nil {
		stats["cachedGames"] = s.results.len()
	}
	if s.started {
		queueLen := s.jobQueue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["workerCount"] = s.pool.Size()
		stats["pendingJobs"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}


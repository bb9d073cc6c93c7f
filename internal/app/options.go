package service

import (
	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/etl"
	"github.com/okian/wolfwise/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore uses store instead of opening the configured one. The service
// still closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithLiveSource replaces the live CDN client.
func WithLiveSource(src etl.LiveSource) Option {
	return func(s *Service) { s.live = src }
}

// WithStatsSource replaces the stats API client.
func WithStatsSource(src etl.StatsSource) Option {
	return func(s *Service) { s.stats = src }
}

// WithRecordsSource replaces the leaders page scraper.
func WithRecordsSource(src etl.RecordsSource) Option {
	return func(s *Service) { s.records = src }
}

// WithPublisher replaces the Redis lineup cache.
func WithPublisher(p etl.LineupPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithoutScheduler keeps the cron scheduler from starting.
func WithoutScheduler() Option {
	return func(s *Service) { s.noScheduler = true }
}

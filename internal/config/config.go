// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// RecordsPage is one basketball-reference leaders page to scrape.
type RecordsPage struct {
	RecordType string `koanf:"record_type"`
	URL        string `koanf:"url"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory job queue.
	JobQueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of collector workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the set of pending job keys.
	DedupeSize int `koanf:"dedupe_size"`
	// ResultCacheSize bounds how many games keep their latest reconstruction.
	ResultCacheSize int `koanf:"result_cache_size"`
	// JobTimeoutSec bounds a single job run; 0 disables the bound.
	JobTimeoutSec int `koanf:"job_timeout_sec"`

	TeamTricode string `koanf:"team_tricode"`
	TeamID      int    `koanf:"team_id"`
	// Season is a "2024-25" label; empty means the current season.
	Season     string `koanf:"season"`
	SeasonType string `koanf:"season_type"`

	LiveBaseURL      string `koanf:"live_base_url"`
	StatsBaseURL     string `koanf:"stats_base_url"`
	ReferenceBaseURL string `koanf:"reference_base_url"`
	UserAgent        string `koanf:"user_agent"`

	HTTPTimeoutMS    int `koanf:"http_timeout_ms"`
	RetryAttempts    int `koanf:"retry_attempts"`
	RetryBaseDelayMS int `koanf:"retry_base_delay_ms"`

	// StoreDriver is memory, postgres or sqlite.
	StoreDriver string `koanf:"store_driver"`
	DatabaseURL string `koanf:"database_url"`
	SQLitePath  string `koanf:"sqlite_path"`

	// RedisURL enables the lineup cache and update stream when set.
	RedisURL          string `koanf:"redis_url"`
	LineupCacheTTLSec int    `koanf:"lineup_cache_ttl_sec"`

	// Cron schedules, evaluated in Timezone.
	ScheduleInGame string `koanf:"schedule_in_game"`
	ScheduleBatch  string `koanf:"schedule_batch"`
	Timezone       string `koanf:"timezone"`

	LineupSizes       []int         `koanf:"lineup_sizes"`
	RecordsPages      []RecordsPage `koanf:"records_pages"`
	RecordsDelayMinMS int           `koanf:"records_delay_min_ms"`
	RecordsDelayMaxMS int           `koanf:"records_delay_max_ms"`

	// DebugDir receives a substitution_events_<game>.csv per processed game
	// when set.
	DebugDir string `koanf:"debug_dir"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		JobQueueSize:      256,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        1024,
		ResultCacheSize:   32,
		JobTimeoutSec:     300,
		TeamTricode:       "MIN",
		TeamID:            1610612750,
		SeasonType:        "Regular Season",
		LiveBaseURL:       "https://cdn.nba.com/static/json/liveData",
		StatsBaseURL:      "https://stats.nba.com/stats",
		ReferenceBaseURL:  "https://www.basketball-reference.com",
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		HTTPTimeoutMS:     30_000,
		RetryAttempts:     3,
		RetryBaseDelayMS:  2_000,
		StoreDriver:       DriverMemory,
		SQLitePath:        "wolfwise.db",
		LineupCacheTTLSec: 6 * 60 * 60,
		ScheduleInGame:    "*/2 * * * *",
		ScheduleBatch:     "0 6 * * *",
		Timezone:          "America/New_York",
		LineupSizes:       DefaultLineupSizes(),
		RecordsPages:      DefaultRecordsPages(),
		RecordsDelayMinMS: 3_000,
		RecordsDelayMaxMS: 6_000,
	}
}

// DefaultLineupSizes are the lineup group quantities collected each night.
func DefaultLineupSizes() []int { return []int{2, 3, 5} }

// DefaultRecordsPages lists the all-time leaders pages collected by default.
func DefaultRecordsPages() []RecordsPage {
	base := "https://www.basketball-reference.com/leaders/"
	return []RecordsPage{
		{RecordType: "Career", URL: base + "pts_career.html"},
		{RecordType: "Career", URL: base + "trb_career.html"},
		{RecordType: "Career", URL: base + "ast_career.html"},
		{RecordType: "Single Season", URL: base + "pts_season.html"},
		{RecordType: "Single Season", URL: base + "ast_season.html"},
		{RecordType: "Active", URL: base + "pts_active.html"},
	}
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// RetryBaseDelay returns the first retry delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// JobTimeout returns the per-job bound, zero when disabled.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSec) * time.Second
}

// RecordsDelay returns the polite delay range between leaders pages.
func (c *Config) RecordsDelay() (lo, hi time.Duration) {
	return time.Duration(c.RecordsDelayMinMS) * time.Millisecond, time.Duration(c.RecordsDelayMaxMS) * time.Millisecond
}

// LineupCacheTTL returns how long cached lineups live in Redis.
func (c *Config) LineupCacheTTL() time.Duration {
	return time.Duration(c.LineupCacheTTLSec) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(c.TeamTricode) != 3:
		return fmt.Errorf("%w: team_tricode must be three letters, got %q", ErrInvalidConfig, c.TeamTricode)
	case c.RetryAttempts < 1:
		return fmt.Errorf("%w: retry_attempts must be at least 1", ErrInvalidConfig)
	case c.RecordsDelayMaxMS < c.RecordsDelayMinMS:
		return fmt.Errorf("%w: records_delay_max_ms below records_delay_min_ms", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres driver", ErrInvalidConfig)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}
	return nil
}

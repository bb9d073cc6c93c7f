// Package cache keeps the latest on-floor lineup per game and team in Redis
// and announces changes on a Redis stream.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/wolfwise/internal/domain/model"
	"github.com/okian/wolfwise/pkg/logger"
)

// Defaults.
const (
	DefaultTTL    = 6 * time.Hour
	DefaultStream = "lineups.updates"
	streamMaxLen  = 10000
)

// Dial connects to a redis:// URL and pings it.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// Key is where the latest lineup of team in game is stored.
func Key(gameID, team string) string {
	return fmt.Sprintf("game:%s:lineup:%s", gameID, team)
}

// LineupCache writes lineups to Redis.
type LineupCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	stream string
	logger logger.Logger
}

// Option configures a LineupCache.
type Option func(*LineupCache)

// WithTTL sets the key expiry.
func WithTTL(d time.Duration) Option {
	return func(c *LineupCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithStream sets the stream updates are appended to.
func WithStream(name string) Option {
	return func(c *LineupCache) {
		if name != "" {
			c.stream = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *LineupCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New wraps a Redis client.
func New(client redis.UniversalClient, opts ...Option) *LineupCache {
	c := &LineupCache{client: client, ttl: DefaultTTL, stream: DefaultStream, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest picks the last snapshot of every team, ordered by team.
func Latest(snaps []model.LineupSnapshot) []model.LineupSnapshot {
	last := make(map[string]model.LineupSnapshot)
	for _, s := range snaps {
		last[s.TeamTricode] = s
	}
	out := make([]model.LineupSnapshot, 0, len(last))
	for _, s := range last {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamTricode < out[j].TeamTricode })
	return out
}

// WriteLatestLineups stores each team's last snapshot under Key with the
// configured TTL.
func (c *LineupCache) WriteLatestLineups(ctx context.Context, gameID string, snaps []model.LineupSnapshot) error {
	latest := Latest(snaps)
	if len(latest) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, s := range latest {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshaling lineup: %w", err)
		}
		pipe.Set(ctx, Key(gameID, s.TeamTricode), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing lineups for %s: %w", gameID, err)
	}
	return nil
}

// PublishLineups appends one stream message per team's last snapshot.
func (c *LineupCache) PublishLineups(ctx context.Context, gameID string, snaps []model.LineupSnapshot) error {
	for _, s := range Latest(snaps) {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshaling lineup: %w", err)
		}
		err = c.client.XAdd(ctx, &redis.XAddArgs{
			Stream: c.stream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]any{
				"game_id":   gameID,
				"team":      s.TeamTricode,
				"event_num": s.EventNum,
				"data":      string(data),
			},
		}).Err()
		if err != nil {
			return fmt.Errorf("publishing lineup for %s %s: %w", gameID, s.TeamTricode, err)
		}
	}
	return nil
}

// Store writes and then publishes. A failed publish is logged, not returned.
func (c *LineupCache) Store(ctx context.Context, gameID string, snaps []model.LineupSnapshot) error {
	if err := c.WriteLatestLineups(ctx, gameID, snaps); err != nil {
		return err
	}
	if err := c.PublishLineups(ctx, gameID, snaps); err != nil {
		c.logger.Warn(ctx, "lineup publish failed", logger.String("game_id", gameID), logger.Error(err))
	}
	return nil
}

// LatestLineup reads a cached snapshot.
func (c *LineupCache) LatestLineup(ctx context.Context, gameID, team string) (model.LineupSnapshot, error) {
	var s model.LineupSnapshot
	data, err := c.client.Get(ctx, Key(gameID, team)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, fmt.Errorf("%s %s: %w", gameID, team, ErrNotFound)
	}
	if err != nil {
		return s, fmt.Errorf("reading lineup: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decoding lineup: %w", err)
	}
	return s, nil
}

// Close closes the client.
func (c *LineupCache) Close() error { return c.client.Close() }

package etl

import (
	"context"

	"github.com/okian/wolfwise/internal/adapters/nbalive"
	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/internal/domain/model"
)

// LiveSource is the live CDN as *nbalive.Client exposes it.
type LiveSource interface {
	TodaysGame(ctx context.Context, tricode string) (string, error)
	Boxscore(ctx context.Context, gameID string) (*nbalive.Boxscore, error)
	PlayByPlay(ctx context.Context, gameID string) (*nbalive.PlayByPlay, error)
}

// StatsSource is the stats API as *statsapi.Client exposes it.
type StatsSource interface {
	LeagueDashLineups(ctx context.Context, q statsapi.LineupsQuery) (*frame.Frame, error)
	LeagueDashPlayerStats(ctx context.Context, q statsapi.PlayerStatsQuery) (*frame.Frame, error)
	LeagueHustleStatsPlayer(ctx context.Context, q statsapi.HustleQuery) (*frame.Frame, error)
	TeamGameLogs(ctx context.Context, q statsapi.TeamGameLogsQuery) (*frame.Frame, error)
	MostRecentGame(ctx context.Context, tricode string) (string, error)
}

// RecordsSource scrapes leaders pages.
type RecordsSource interface {
	Records(ctx context.Context, p reference.Page) ([]reference.Record, error)
}

// LineupPublisher receives every reconstructed game, e.g. the Redis cache.
type LineupPublisher interface {
	Store(ctx context.Context, gameID string, snaps []model.LineupSnapshot) error
}

package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/pkg/logger"
)

// SeasonGames is the length of a regular season.
const SeasonGames = 82

// PlayerStatsWindow is one per-game stats table for the team's players.
type PlayerStatsWindow struct {
	LastNGames int
	Table      string
}

// PlayerStatsWindows are the full season and the last 5 and 10 games.
var PlayerStatsWindows = []PlayerStatsWindow{
	{LastNGames: 0, Table: "timberwolves_player_stats_season"},
	{LastNGames: 5, Table: "timberwolves_player_stats_last_5"},
	{LastNGames: 10, Table: "timberwolves_player_stats_last_10"},
}

var playerStatsColumns = []string{
	"PLAYER_ID", "PLAYER_NAME", "GP", "MIN", "PTS", "REB", "AST", "STL", "BLK",
	"FG_PCT", "FG3_PCT", "FT_PCT", "PLUS_MINUS",
}

var pctColumns = []string{"FG_PCT", "FG3_PCT", "FT_PCT"}

// PlayerStats writes the stat card tables.
type PlayerStats struct {
	stats    StatsSource
	store    repository.Store
	settings Settings
	now      func() time.Time
	logger   logger.Logger
}

// NewPlayerStats creates the collector.
func NewPlayerStats(stats StatsSource, store repository.Store, s Settings, l logger.Logger) *PlayerStats {
	if l == nil {
		l = logger.Nop()
	}
	return &PlayerStats{stats: stats, store: store, settings: s, now: s.clock(), logger: l}
}

// Name implements Job.
func (c *PlayerStats) Name() string { return "player_stats" }

// Run implements Job.
func (c *PlayerStats) Run(ctx context.Context) error {
	season := c.settings.CurrentSeason()
	var errs []error
	for _, w := range PlayerStatsWindows {
		if err := c.runWindow(ctx, season, w); err != nil {
			c.logger.Error(ctx, "player stats failed", logger.String("table", w.Table), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", w.Table, err))
		}
	}
	return errors.Join(errs...)
}

func (c *PlayerStats) runWindow(ctx context.Context, season string, w PlayerStatsWindow) error {
	seasonType := c.settings.SeasonType
	f, err := c.stats.LeagueDashPlayerStats(ctx, statsapi.PlayerStatsQuery{
		Season:     season,
		SeasonType: seasonType,
		PerMode:    statsapi.PerModePerGame,
		LastNGames: w.LastNGames,
		TeamID:     c.settings.TeamID,
	})
	if err != nil {
		return err
	}

	remaining := -1
	if w.LastNGames == 0 {
		logs, err := c.stats.TeamGameLogs(ctx, statsapi.TeamGameLogsQuery{
			TeamID:     c.settings.TeamID,
			Season:     season,
			SeasonType: seasonType,
		})
		if err != nil {
			return err
		}
		remaining = SeasonGames - logs.Len()
	}

	out := PlayerStatsCard(f, w.LastNGames, remaining, c.now())
	_, err = c.store.Replace(ctx, w.Table, nil, out)
	return err
}

// PlayerStatsCard selects the card columns, sorts by minutes, formats
// shooting percentages and stamps the timeframe. remaining < 0 leaves out
// GAMES_REMAINING.
func PlayerStatsCard(in *frame.Frame, lastN, remaining int, now time.Time) *frame.Frame {
	out := in.Select(playerStatsColumns...).SortBy("MIN", true)
	if remaining >= 0 {
		out.WithConstant("GAMES_REMAINING", int64(remaining))
	}
	for _, col := range pctColumns {
		if !out.Has(col) {
			continue
		}
		out.WithColumn(col, func(i int) any { return FormatPct(out.Value(i, col)) })
	}
	out.WithColumn("PLAYER_ID", func(i int) any { return intOr0(out.Value(i, "PLAYER_ID")) })
	out.WithConstant("TIMESTAMP", now.Format(time.RFC3339))
	out.WithConstant("TIMEFRAME", Timeframe(lastN))
	return out
}

// FormatPct renders a 0..1 fraction as "47.3%", or "N/A" when missing.
func FormatPct(v any) string {
	x, ok := frame.Float(v)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", x*100)
}

// Timeframe labels a LastNGames window.
func Timeframe(lastN int) string {
	if lastN > 0 {
		return fmt.Sprintf("Last %d games", lastN)
	}
	return "Full Season"
}

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

// TableHustle holds per-player hustle stats.
const TableHustle = "hustle_stats"

// hustleFloats maps output columns to the API's names.
var hustleFloats = []struct{ out, in string }{
	{"contested_shots", "CONTESTED_SHOTS"},
	{"contested_shots_2pt", "CONTESTED_SHOTS_2PT"},
	{"contested_shots_3pt", "CONTESTED_SHOTS_3PT"},
	{"deflections", "DEFLECTIONS"},
	{"charges_drawn", "CHARGES_DRAWN"},
	{"screen_assists", "SCREEN_ASSISTS"},
	{"screen_ast_pts", "SCREEN_AST_PTS"},
	{"off_loose_balls_recovered", "OFF_LOOSE_BALLS_RECOVERED"},
	{"def_loose_balls_recovered", "DEF_LOOSE_BALLS_RECOVERED"},
	{"loose_balls_recovered", "LOOSE_BALLS_RECOVERED"},
	{"pct_loose_balls_recovered_off", "PCT_LOOSE_BALLS_RECOVERED_OFF"},
	{"pct_loose_balls_recovered_def", "PCT_LOOSE_BALLS_RECOVERED_DEF"},
	{"off_boxouts", "OFF_BOXOUTS"},
	{"def_boxouts", "DEF_BOXOUTS"},
	{"box_out_player_team_rebs", "BOX_OUT_PLAYER_TEAM_REBS"},
	{"box_out_player_rebs", "BOX_OUT_PLAYER_REBS"},
	{"box_outs", "BOX_OUTS"},
	{"pct_box_outs_off", "PCT_BOX_OUTS_OFF"},
	{"pct_box_outs_def", "PCT_BOX_OUTS_DEF"},
	{"pct_box_outs_team_reb", "PCT_BOX_OUTS_TEAM_REB"},
	{"pct_box_outs_reb", "PCT_BOX_OUTS_REB"},
}

// Hustle collects the team's hustle stats per game and in totals.
type Hustle struct {
	stats    StatsSource
	store    repository.Store
	settings Settings
	now      func() time.Time
	logger   logger.Logger
}

// NewHustle creates the collector.
func NewHustle(stats StatsSource, store repository.Store, s Settings, l logger.Logger) *Hustle {
	if l == nil {
		l = logger.Nop()
	}
	return &Hustle{stats: stats, store: store, settings: s, now: s.clock(), logger: l}
}

// Name implements Job.
func (c *Hustle) Name() string { return "hustle" }

// Run implements Job.
func (c *Hustle) Run(ctx context.Context) error {
	season, seasonType := c.settings.CurrentSeason(), c.settings.SeasonType
	var errs []error
	for _, mode := range []string{statsapi.PerModePerGame, statsapi.PerModeTotals} {
		f, err := c.stats.LeagueHustleStatsPlayer(ctx, statsapi.HustleQuery{
			Season:     season,
			SeasonType: seasonType,
			PerMode:    mode,
			TeamID:     c.settings.TeamID,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("hustle %s: %w", mode, err))
			continue
		}
		if f.Len() == 0 {
			c.logger.Warn(ctx, "no hustle rows", logger.String("per_mode", mode))
			continue
		}
		out := HustleFrame(f, season, seasonType, mode, c.now())
		p := repository.Where("season", season).
			And("season_type", seasonType).
			And("per_mode", mode)
		if _, err := c.store.Replace(ctx, TableHustle, p, out); err != nil {
			errs = append(errs, fmt.Errorf("hustle %s: %w", mode, err))
		}
	}
	return errors.Join(errs...)
}

// HustleFrame reshapes an API hustle frame into the stored columns.
// Missing numbers become 0.
func HustleFrame(in *frame.Frame, season, seasonType, perMode string, now time.Time) *frame.Frame {
	cols := []string{"player_id", "player_name", "team_id", "team_abbreviation", "age",
		"games_played", "minutes_played"}
	for _, h := range hustleFloats {
		cols = append(cols, h.out)
	}
	cols = append(cols, "season", "season_type", "per_mode", "created_at", "updated_at")

	stamp := now.UTC().Format(time.RFC3339)
	out := frame.New(cols...)
	for i := 0; i < in.Len(); i++ {
		rec := map[string]any{
			"player_id":         intOr0(in.Value(i, "PLAYER_ID")),
			"player_name":       frame.String(in.Value(i, "PLAYER_NAME")),
			"team_id":           intOr0(in.Value(i, "TEAM_ID")),
			"team_abbreviation": frame.String(in.Value(i, "TEAM_ABBREVIATION")),
			"age":               intOr0(in.Value(i, "AGE")),
			"games_played":      intOr0(in.Value(i, "G")),
			"minutes_played":    floatOr0(in.Value(i, "MIN")),
			"season":            season,
			"season_type":       seasonType,
			"per_mode":          perMode,
			"created_at":        stamp,
			"updated_at":        stamp,
		}
		for _, h := range hustleFloats {
			rec[h.out] = floatOr0(in.Value(i, h.in))
		}
		out.AppendRecord(rec)
	}
	return out
}

func intOr0(v any) int64 {
	n, _ := frame.Int(v)
	return n
}

func floatOr0(v any) float64 {
	x, _ := frame.Float(v)
	return x
}

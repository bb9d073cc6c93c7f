package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/domain/ranking"
	"github.com/okian/wolfwise/pkg/logger"
)

// LeadersTable describes one league-wide leaders table.
type LeadersTable struct {
	Table       string
	MeasureType string
	LastNGames  int
}

// LeadersTables are the six leaders tables: base and advanced stats over the
// last 5 games, the last 10 and the full season.
var LeadersTables = []LeadersTable{
	{Table: "last_5_base", MeasureType: statsapi.MeasureBase, LastNGames: 5},
	{Table: "last_10_base", MeasureType: statsapi.MeasureBase, LastNGames: 10},
	{Table: "full_season_base", MeasureType: statsapi.MeasureBase},
	{Table: "last_5_advanced", MeasureType: statsapi.MeasureAdvanced, LastNGames: 5},
	{Table: "last_10_advanced", MeasureType: statsapi.MeasureAdvanced, LastNGames: 10},
	{Table: "full_season_advanced", MeasureType: statsapi.MeasureAdvanced},
}

// Leaders rebuilds the leaders tables with league ranks.
type Leaders struct {
	stats    StatsSource
	store    repository.Store
	settings Settings
	tables   []LeadersTable
	logger   logger.Logger
}

// NewLeaders creates the collector for every table in LeadersTables.
func NewLeaders(stats StatsSource, store repository.Store, s Settings, l logger.Logger) *Leaders {
	if l == nil {
		l = logger.Nop()
	}
	return &Leaders{stats: stats, store: store, settings: s, tables: LeadersTables, logger: l}
}

// Name implements Job.
func (c *Leaders) Name() string { return "leaders" }

// Run implements Job. Each table is independent; failures are joined.
func (c *Leaders) Run(ctx context.Context) error {
	season := c.settings.CurrentSeason()
	var errs []error
	for _, t := range c.tables {
		if err := c.runTable(ctx, season, t); err != nil {
			c.logger.Error(ctx, "leaders table failed", logger.String("table", t.Table), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.Table, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Leaders) runTable(ctx context.Context, season string, t LeadersTable) error {
	f, err := c.stats.LeagueDashPlayerStats(ctx, statsapi.PlayerStatsQuery{
		Season:      season,
		SeasonType:  c.settings.SeasonType,
		MeasureType: t.MeasureType,
		PerMode:     statsapi.PerModeTotals,
		LastNGames:  t.LastNGames,
	})
	if err != nil {
		return err
	}
	if f.Len() == 0 {
		return ErrNoData
	}

	cols := ranking.BaseColumns
	if t.MeasureType == statsapi.MeasureAdvanced {
		cols = ranking.AdvancedColumns
	}
	ranking.Rank(f, cols...)

	// the column set differs between measure types, so the table is rebuilt
	if r, ok := c.store.(repository.Recreator); ok {
		if err := r.Recreate(ctx, t.Table, f); err != nil {
			return err
		}
	}
	n, err := c.store.Replace(ctx, t.Table, nil, f)
	if err != nil {
		return err
	}
	c.logger.Info(ctx, "leaders table written", logger.String("table", t.Table), logger.Int("rows", n))
	return nil
}

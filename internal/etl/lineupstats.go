package etl

import (
	"context"
	"fmt"
	"regexp"

	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/pkg/logger"
)

// TableLineups holds season lineup totals for the team.
const TableLineups = "lineups"

// names inside a group are joined by " - "; hyphenated surnames have no
// spaces around the hyphen
var groupSep = regexp.MustCompile(`\s+-\s+`)

var lineupColumns = []string{
	"group_id", "group_name", "team_id", "team_abbreviation", "gp", "w", "l", "w_pct",
	"min", "fgm", "fga", "fg_pct", "fg3m", "fg3a", "fg3_pct", "ftm", "fta", "ft_pct",
	"oreb", "dreb", "reb", "ast", "tov", "stl", "blk", "blka", "pf", "pfd", "pts",
	"plus_minus", "gp_rank", "w_rank", "l_rank", "w_pct_rank", "min_rank", "fgm_rank",
	"fga_rank", "fg_pct_rank", "fg3m_rank", "fg3a_rank", "fg3_pct_rank", "ftm_rank",
	"fta_rank", "ft_pct_rank", "oreb_rank", "dreb_rank", "reb_rank", "ast_rank",
	"tov_rank", "stl_rank", "blk_rank", "blka_rank", "pf_rank", "pfd_rank", "pts_rank",
	"plus_minus_rank", "lineup_size", "player1", "player2", "player3", "player4", "player5",
	"season",
}

var lineupIntColumns = []string{
	"team_id", "gp", "w", "l", "fgm", "fga", "fg3m", "fg3a", "ftm", "fta",
	"oreb", "dreb", "reb", "ast", "tov", "stl", "blk", "blka", "pf", "pfd", "pts",
	"plus_minus", "gp_rank", "w_rank", "l_rank", "w_pct_rank", "min_rank", "fgm_rank",
	"fga_rank", "fg_pct_rank", "fg3m_rank", "fg3a_rank", "fg3_pct_rank", "ftm_rank",
	"fta_rank", "ft_pct_rank", "oreb_rank", "dreb_rank", "reb_rank", "ast_rank",
	"tov_rank", "stl_rank", "blk_rank", "blka_rank", "pf_rank", "pfd_rank", "pts_rank",
	"plus_minus_rank", "lineup_size",
}

// LineupStats collects the team's 2, 3 and 5 man lineup totals.
type LineupStats struct {
	stats    StatsSource
	store    repository.Store
	settings Settings
	logger   logger.Logger
}

// NewLineupStats creates the collector.
func NewLineupStats(stats StatsSource, store repository.Store, s Settings, l logger.Logger) *LineupStats {
	if l == nil {
		l = logger.Nop()
	}
	return &LineupStats{stats: stats, store: store, settings: s, logger: l}
}

// Name implements Job.
func (c *LineupStats) Name() string { return "lineup_stats" }

// Run implements Job. A size that fails to fetch is skipped; the season is
// only replaced when at least one size returned rows.
func (c *LineupStats) Run(ctx context.Context) error {
	season, seasonType := c.settings.CurrentSeason(), c.settings.SeasonType
	all := frame.New()
	for _, size := range c.settings.LineupSizes {
		f, err := c.stats.LeagueDashLineups(ctx, statsapi.LineupsQuery{
			GroupQuantity: size,
			TeamID:        c.settings.TeamID,
			Season:        season,
			SeasonType:    seasonType,
		})
		if err != nil {
			c.logger.Error(ctx, "fetching lineups failed", logger.Int("size", size), logger.Error(err))
			continue
		}
		if f.Len() == 0 {
			continue
		}
		all.Concat(f.WithConstant("LINEUP_SIZE", int64(size)))
		c.logger.Info(ctx, "fetched lineups", logger.Int("size", size), logger.Int("rows", f.Len()))
	}
	if all.Len() == 0 {
		return fmt.Errorf("lineups %s: %w", season, ErrNoData)
	}

	out, err := ShapeLineups(all, season)
	if err != nil {
		return err
	}
	_, err = c.store.Replace(ctx, TableLineups, repository.Where("season", season), out)
	return err
}

// ShapeLineups lower-cases columns, splits group names into player1..5,
// tags the season and keeps the published columns.
func ShapeLineups(f *frame.Frame, season string) (*frame.Frame, error) {
	f.LowerColumns()
	if !f.Has("group_name") {
		return nil, fmt.Errorf("lineups: group_name column missing")
	}
	for i := 0; i < 5; i++ {
		f.WithColumn(fmt.Sprintf("player%d", i+1), func(r int) any {
			names := SplitGroupName(frame.String(f.Value(r, "group_name")))
			if i < len(names) {
				return names[i]
			}
			return nil
		})
	}
	f.WithConstant("season", season)

	out := f.Select(lineupColumns...)
	for _, col := range lineupIntColumns {
		if out.Has(col) {
			out.WithColumn(col, func(r int) any {
				if v, ok := frame.Int(out.Value(r, col)); ok {
					return v
				}
				return nil
			})
		}
	}
	return out, nil
}

// SplitGroupName splits "K. Towns - N. Alexander-Walker" into names.
func SplitGroupName(group string) []string {
	if group == "" {
		return nil
	}
	return groupSep.Split(group, -1)
}

package etl

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/wolfwise/internal/adapters/nbalive"
	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/internal/domain/gameclock"
	"github.com/okian/wolfwise/internal/domain/lineup"
	"github.com/okian/wolfwise/internal/domain/model"
	"github.com/okian/wolfwise/pkg/logger"
	"github.com/okian/wolfwise/pkg/metrics"
)

// In-game tables.
const (
	TableInGameInfo        = "in_game_info"
	TableInGamePlayByPlay  = "in_game_play_by_play"
	TableInGameLineups     = "in_game_lineups"
	TableInGamePlayerStats = "in_game_player_stats"
)

// InGame refreshes the in-game tables for the team's current game.
type InGame struct {
	live      LiveSource
	finder    interface{ MostRecentGame(context.Context, string) (string, error) }
	store     repository.Store
	recon     *lineup.Reconstructor
	publisher LineupPublisher
	onResult  func(lineup.Result)
	settings  Settings
	logger    logger.Logger
}

// InGameOption configures InGame.
type InGameOption func(*InGame)

// WithPublisher sends every reconstruction to p after it is stored.
func WithPublisher(p LineupPublisher) InGameOption {
	return func(g *InGame) { g.publisher = p }
}

// WithResultHook is called with every successful reconstruction.
func WithResultHook(fn func(lineup.Result)) InGameOption {
	return func(g *InGame) { g.onResult = fn }
}

// WithInGameLogger sets the logger.
func WithInGameLogger(l logger.Logger) InGameOption {
	return func(g *InGame) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewInGame creates the in-game collector. stats may be nil, in which case
// only today's live game is considered.
func NewInGame(live LiveSource, stats StatsSource, store repository.Store, s Settings, opts ...InGameOption) *InGame {
	g := &InGame{live: live, store: store, settings: s, logger: logger.Nop()}
	if stats != nil {
		g.finder = stats
	}
	for _, opt := range opts {
		opt(g)
	}
	g.recon = lineup.New(lineup.WithLogger(g.logger))
	return g
}

// Name implements Job.
func (g *InGame) Name() string { return "in_game" }

// Run resolves the team's game and refreshes it.
func (g *InGame) Run(ctx context.Context) error {
	id, err := g.ResolveGame(ctx)
	if err != nil {
		return err
	}
	_, err = g.RunGame(ctx, id)
	return err
}

// ResolveGame returns today's game for the team, falling back to its most
// recent game.
func (g *InGame) ResolveGame(ctx context.Context) (string, error) {
	team := g.settings.TeamTricode
	id, err := g.live.TodaysGame(ctx, team)
	if err != nil {
		g.logger.Warn(ctx, "scoreboard unavailable", logger.Error(err))
	}
	if id != "" {
		return id, nil
	}
	if g.finder == nil {
		return "", fmt.Errorf("%w: %s", ErrNoGame, team)
	}
	g.logger.Info(ctx, "team not playing today, using most recent game", logger.String("team", team))
	id, err = g.finder.MostRecentGame(ctx, team)
	if err != nil {
		return "", fmt.Errorf("finding most recent game: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrNoGame, team)
	}
	return id, nil
}

// RunGame writes the four in-game tables for gameID. Each table is written
// independently; failures are joined into the returned error. A roster the
// reconstructor rejects skips only the lineup table.
func (g *InGame) RunGame(ctx context.Context, gameID string) (lineup.Result, error) {
	var res lineup.Result
	box, err := g.live.Boxscore(ctx, gameID)
	if err != nil {
		metrics.RecordGameFailed()
		return res, err
	}

	var errs []error
	if _, err := g.store.Replace(ctx, TableInGameInfo, nil, GameInfoFrame(box)); err != nil {
		errs = append(errs, err)
	}

	pbp, err := g.live.PlayByPlay(ctx, gameID)
	if err != nil {
		errs = append(errs, err)
	} else {
		events := nbalive.ToEvents(pbp)
		slices.SortStableFunc(events, func(a, b model.Event) int { return cmp.Compare(a.ActionNumber, b.ActionNumber) })

		if _, err := g.store.Replace(ctx, TableInGamePlayByPlay, nil, PlayByPlayFrame(gameID, events)); err != nil {
			errs = append(errs, err)
		}

		res, err = g.reconstruct(ctx, gameID, box, events)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if team, ok := box.Game.Team(g.settings.TeamTricode); ok {
		if _, err := g.store.Replace(ctx, TableInGamePlayerStats, nil, PlayerStatsFrame(team)); err != nil {
			errs = append(errs, err)
		}
	} else {
		g.logger.Warn(ctx, "team not found in boxscore",
			logger.String("game_id", gameID), logger.String("team", g.settings.TeamTricode))
	}

	if err := errors.Join(errs...); err != nil {
		metrics.RecordGameFailed()
		return res, fmt.Errorf("game %s: %w", gameID, err)
	}
	return res, nil
}

func (g *InGame) reconstruct(ctx context.Context, gameID string, box *nbalive.Boxscore, events []model.Event) (lineup.Result, error) {
	res, err := g.recon.Reconstruct(ctx, nbalive.ToRoster(box), events)
	if err != nil {
		return res, err
	}
	for _, a := range res.Anomalies {
		metrics.RecordLineupAnomaly(string(a.Kind))
	}
	metrics.RecordGameProcessed(len(res.Snapshots), res.Repairs)

	if _, err := g.store.Replace(ctx, TableInGameLineups, repository.Where("game_id", gameID), LineupsFrame(res.Snapshots)); err != nil {
		return res, err
	}
	if g.publisher != nil {
		if err := g.publisher.Store(ctx, gameID, res.Snapshots); err != nil {
			g.logger.Warn(ctx, "publishing lineups failed", logger.String("game_id", gameID), logger.Error(err))
		}
	}
	if g.settings.DebugDir != "" {
		if path, err := WriteSubstitutionLog(g.settings.DebugDir, gameID, events); err != nil {
			g.logger.Warn(ctx, "writing substitution log failed", logger.Error(err))
		} else {
			g.logger.Debug(ctx, "substitution log written", logger.String("path", path))
		}
	}
	if g.onResult != nil {
		g.onResult(res)
	}
	g.logger.Info(ctx, "lineups reconstructed",
		logger.String("game_id", gameID),
		logger.Int("snapshots", len(res.Snapshots)),
		logger.Int("anomalies", len(res.Anomalies)),
		logger.Int("repairs", res.Repairs))
	return res, nil
}

// GameInfoFrame is the single in_game_info row.
func GameInfoFrame(box *nbalive.Boxscore) *frame.Frame {
	game := box.Game
	status := game.GameStatusText
	if status == "" {
		status = fmt.Sprint(game.GameStatus)
	}
	f := frame.New("game_id", "game_status", "game_clock", "period", "home_team", "away_team",
		"home_score", "away_score", "game_date", "arena", "city", "is_halftime", "is_end_of_period")
	_ = f.Append(game.GameID, status, game.GameClock, int64(game.Period),
		game.HomeTeam.TeamTricode, game.AwayTeam.TeamTricode,
		int64(game.HomeTeam.Score), int64(game.AwayTeam.Score),
		game.GameTimeUTC, game.Arena.ArenaName, game.Arena.ArenaCity,
		isHalftime(game), bool(game.IsEndOfPeriod))
	return f
}

func isHalftime(g nbalive.BoxscoreGame) bool {
	if g.Period != 2 {
		return false
	}
	left, err := gameclock.Remaining(g.GameClock)
	return err == nil && left == 0
}

// PlayByPlayFrame is one in_game_play_by_play row per event.
func PlayByPlayFrame(gameID string, events []model.Event) *frame.Frame {
	f := frame.New("game_id", "event_num", "clock", "period", "period_label", "event_type", "description",
		"home_score", "away_score", "team_tricode", "player_name", "is_scoring_play",
		"score_margin", "time_seconds")
	for _, e := range events {
		var ts any
		if v, err := gameclock.TimeSeconds(e.Period, e.Clock); err == nil {
			ts = v
		}
		_ = f.Append(gameID, int64(e.ActionNumber), gameclock.Display(e.Clock), int64(e.Period),
			gameclock.PeriodLabel(e.Period), e.ActionType, e.Description, int64(e.ScoreHome), int64(e.ScoreAway),
			e.TeamTricode, e.PlayerNameI, e.ScoreChange, int64(e.ScoreMargin), ts)
	}
	return f
}

// LineupsFrame is one in_game_lineups row per snapshot.
func LineupsFrame(snaps []model.LineupSnapshot) *frame.Frame {
	f := frame.New("game_id", "team_tricode", "period", "clock", "event_num", "player_ids", "player_names")
	for _, s := range snaps {
		_ = f.Append(s.GameID, s.TeamTricode, int64(s.Period), gameclock.Display(s.Clock),
			int64(s.EventNum), s.IDs(), s.Names())
	}
	return f
}

// PlayerStatsFrame is the team's box score, one row per player.
func PlayerStatsFrame(team nbalive.BoxscoreTeam) *frame.Frame {
	f := frame.New("Player", "PTS", "REB", "AST", "STL", "TOV", "BLK", "FGs", "threePt",
		"plusMinusPoints", "minutes", "fouls", "FTs")
	for _, p := range team.Players {
		st := p.Statistics
		minutes := st.MinutesCalculated
		if minutes == "" {
			minutes = "0:00"
		} else {
			minutes = gameclock.Display(minutes)
		}
		_ = f.Append(strings.TrimSpace(p.FirstName+" "+p.FamilyName),
			int64(st.Points), int64(st.ReboundsTotal), int64(st.Assists), int64(st.Steals),
			int64(st.Turnovers), int64(st.Blocks),
			madeAttempted(st.FieldGoalsMade, st.FieldGoalsAttempted),
			madeAttempted(st.ThreePointersMade, st.ThreePointersAttempted),
			st.PlusMinusPoints, minutes, int64(st.FoulsPersonal),
			madeAttempted(st.FreeThrowsMade, st.FreeThrowsAttempted))
	}
	return f
}

func madeAttempted(made, att nbalive.FlexInt) string {
	return fmt.Sprintf("%d-%d", made, att)
}

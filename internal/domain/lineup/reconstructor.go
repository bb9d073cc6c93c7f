// Package lineup rebuilds which five players each team had on the floor at
// every play-by-play event of a game.
//
// Reconstruction seeds each team from its starters, then folds the event
// stream through State.Apply. A snapshot of both teams is taken before each
// event is applied, so a snapshot answers "who was on the floor when this
// happened". Substitution feeds drop events, so after every substitution a
// team whose set is no longer five players is rebuilt from its last five
// entrants, and start-of-period substitutions always rebuild from them.
package lineup

import (
	"context"

	"github.com/okian/wolfwise/internal/domain/model"
	"github.com/okian/wolfwise/pkg/logger"
)

// Result is the output of one game's reconstruction.
type Result struct {
	GameID    string
	Snapshots []model.LineupSnapshot
	Anomalies []model.Anomaly
	// Repairs counts lineups rebuilt from the ledger after drifting from five.
	Repairs int
	// Resets counts start-of-period rebuilds.
	Resets int
	// FallbackTeams lists teams seeded from their first five listed players.
	FallbackTeams []string
}

// Reconstructor replays substitutions. It holds no per-game state and is safe
// for concurrent use across games.
type Reconstructor struct {
	logger logger.Logger
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithLogger sets the logger used for anomaly diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconstructor) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Reconstructor.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconstruct produces one snapshot per team for every event, in event order.
// events must already be ordered by action number. A roster that does not
// name two teams with players fails with ErrUnresolvableRoster.
func (r *Reconstructor) Reconstruct(ctx context.Context, roster model.Roster, events []model.Event) (Result, error) {
	state, fallback, err := Seed(roster)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		GameID:        roster.GameID,
		Snapshots:     make([]model.LineupSnapshot, 0, len(events)*len(state.order)),
		FallbackTeams: fallback,
	}
	for _, code := range fallback {
		r.logger.Warn(ctx, "starters not flagged as five, using first five listed players",
			logger.String("game_id", roster.GameID), logger.String("team", code))
	}

	names := roster.Names()
	for _, e := range events {
		res.Snapshots = append(res.Snapshots, state.Snapshots(roster.GameID, e, names)...)

		var out Outcome
		state, out = state.Apply(e)
		if out.Anomaly != nil {
			res.Anomalies = append(res.Anomalies, *out.Anomaly)
			r.logger.Warn(ctx, "invalid substitution event",
				logger.String("game_id", roster.GameID),
				logger.Int("event_num", out.Anomaly.EventNum),
				logger.String("team", out.Anomaly.TeamTricode),
				logger.String("kind", string(out.Anomaly.Kind)))
			continue
		}
		if out.Repaired {
			res.Repairs++
			r.logger.Debug(ctx, "lineup rebuilt from recent entrants",
				logger.String("game_id", roster.GameID),
				logger.Int("event_num", e.ActionNumber),
				logger.String("team", e.TeamTricode))
		}
		if out.Reset {
			res.Resets++
		}
	}
	return res, nil
}

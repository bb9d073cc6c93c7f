package lineup

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/wolfwise/internal/domain/model"
)

// ledgerSize is how many recent entrants a team remembers.
const ledgerSize = model.StartingFive

// team is one side's on-floor set and recent-in ledger.
type team struct {
	onFloor []string // sorted, unique
	ledger  []string // oldest first, len <= ledgerSize
}

func (t team) clone() team {
	return team{onFloor: slices.Clone(t.onFloor), ledger: slices.Clone(t.ledger)}
}

// fromLedger is the set formed by the ledger's entries.
func (t team) fromLedger() []string {
	set := slices.Clone(t.ledger)
	slices.Sort(set)
	return slices.Compact(set)
}

// State is the on-floor picture of both teams after some prefix of a game's
// events. Apply returns a new State and leaves its receiver untouched, so a
// State can be kept as a checkpoint.
type State struct {
	order []string // home, away
	teams map[string]team
}

// Outcome describes what applying one event did.
type Outcome struct {
	Applied  bool
	Repaired bool // set size drifted from five and was rebuilt from the ledger
	Reset    bool // start-of-period reset from the ledger
	Anomaly  *model.Anomaly
}

// Seed builds the initial state from a roster. fallback lists the teams whose
// starters were not flagged as exactly five.
func Seed(roster model.Roster) (state State, fallback []string, err error) {
	home, away := strings.TrimSpace(roster.Home.Tricode), strings.TrimSpace(roster.Away.Tricode)
	switch {
	case home == "" || away == "":
		return State{}, nil, fmt.Errorf("%w: game %s: missing team code", ErrUnresolvableRoster, roster.GameID)
	case home == away:
		return State{}, nil, fmt.Errorf("%w: game %s: both teams are %s", ErrUnresolvableRoster, roster.GameID, home)
	}

	state = State{order: []string{home, away}, teams: make(map[string]team, 2)}
	for _, tr := range roster.Teams() {
		code := strings.TrimSpace(tr.Tricode)
		if len(tr.Players) == 0 {
			return State{}, nil, fmt.Errorf("%w: game %s: %s has no players", ErrUnresolvableRoster, roster.GameID, code)
		}
		starters, flagged := tr.Starters()
		if !flagged {
			fallback = append(fallback, code)
		}
		t := team{ledger: slices.Clone(starters)}
		t.onFloor = t.fromLedger()
		state.teams[code] = t
	}
	return state, fallback, nil
}

// Teams returns the team codes, home first.
func (s State) Teams() []string { return slices.Clone(s.order) }

// OnFloor returns the sorted ids a team currently has on the floor.
func (s State) OnFloor(code string) []string { return slices.Clone(s.teams[code].onFloor) }

// Ledger returns a team's recent entrants, oldest first.
func (s State) Ledger(code string) []string { return slices.Clone(s.teams[code].ledger) }

// Apply folds one event into the state. Non-substitution events return the
// receiver unchanged. Substitutions that cannot be attributed come back with
// an anomaly and also leave the state unchanged.
func (s State) Apply(e model.Event) (State, Outcome) {
	if !e.IsSubstitution() {
		return s, Outcome{}
	}

	code := strings.TrimSpace(e.TeamTricode)
	current, ok := s.teams[code]
	if !ok {
		return s, reject(e, model.AnomalyUnknownTeam, fmt.Sprintf("substitution for unknown team %q", e.TeamTricode))
	}
	if !e.HasPerson() {
		return s, reject(e, model.AnomalyMissingPlayer, "substitution without a player id")
	}

	id := strings.TrimSpace(e.PersonID)
	t := current.clone()
	switch strings.ToLower(strings.TrimSpace(e.SubType)) {
	case model.SubTypeOut:
		if i, found := slices.BinarySearch(t.onFloor, id); found {
			t.onFloor = slices.Delete(t.onFloor, i, i+1)
		}
	case model.SubTypeIn:
		if i, found := slices.BinarySearch(t.onFloor, id); !found {
			t.onFloor = slices.Insert(t.onFloor, i, id)
		}
		t.ledger = append(t.ledger, id)
		if over := len(t.ledger) - ledgerSize; over > 0 {
			t.ledger = t.ledger[over:]
		}
	default:
		return s, reject(e, model.AnomalyUnknownDirection, fmt.Sprintf("substitution with direction %q", e.SubType))
	}

	out := Outcome{Applied: true}
	if len(t.onFloor) != model.StartingFive {
		t.onFloor = t.fromLedger()
		out.Repaired = true
	}
	if e.HasQualifier(model.QualifierStartPeriod) {
		t.onFloor = t.fromLedger()
		out.Reset = true
	}

	next := State{order: s.order, teams: make(map[string]team, len(s.teams))}
	for k, v := range s.teams {
		next.teams[k] = v
	}
	next.teams[code] = t
	return next, out
}

func reject(e model.Event, kind model.AnomalyKind, msg string) Outcome {
	return Outcome{Anomaly: &model.Anomaly{
		EventNum:    e.ActionNumber,
		TeamTricode: e.TeamTricode,
		PersonID:    e.PersonID,
		Kind:        kind,
		Message:     msg,
	}}
}

// Snapshots captures both teams, home first, as of the moment before e.
func (s State) Snapshots(gameID string, e model.Event, names map[string]string) []model.LineupSnapshot {
	snaps := make([]model.LineupSnapshot, 0, len(s.order))
	for _, code := range s.order {
		ids := slices.Clone(s.teams[code].onFloor)
		resolved := make([]string, 0, len(ids))
		for _, id := range ids {
			if name, ok := names[id]; ok {
				resolved = append(resolved, name)
			}
		}
		snaps = append(snaps, model.LineupSnapshot{
			GameID:      gameID,
			TeamTricode: code,
			Period:      e.Period,
			Clock:       e.Clock,
			EventNum:    e.ActionNumber,
			PlayerIDs:   ids,
			PlayerNames: resolved,
		})
	}
	return snaps
}

// Package model contains domain models passed between layers.
package model

import (
	"strings"
)

// Action types and substitution directions that carry meaning for lineups.
const (
	ActionSubstitution = "substitution"
	SubTypeIn          = "in"
	SubTypeOut         = "out"

	// QualifierStartPeriod marks the substitutions that seat a period's
	// starting unit.
	QualifierStartPeriod = "startperiod"
)

// Event is one play-by-play action for a game.
type Event struct {
	ActionNumber int      // monotonic within a game
	Period       int      // 1-4 regulation, 5+ overtime
	Clock        string   // time remaining as delivered, "PT11:42.00" or "11:42"
	TeamTricode  string   // empty for game-level actions
	ActionType   string   // e.g. "substitution", "2pt", "rebound"
	SubType      string   // "in"/"out" for substitutions
	PersonID     string   // empty when the feed carries no subject player
	Qualifiers   []string // e.g. "startperiod"
	Description  string
	PlayerNameI  string
	ScoreHome    int
	ScoreAway    int
	ScoreChange  bool
	ScoreMargin  int
}

// IsSubstitution reports whether the event changes who is on the floor.
func (e Event) IsSubstitution() bool {
	return strings.EqualFold(e.ActionType, ActionSubstitution)
}

// HasQualifier reports whether q is among the event's qualifiers.
func (e Event) HasQualifier(q string) bool {
	for _, have := range e.Qualifiers {
		if strings.EqualFold(have, q) {
			return true
		}
	}
	return false
}

// HasPerson reports whether the event names a usable player id. The feeds
// use 0 and the literal strings None/null for "no player".
func (e Event) HasPerson() bool {
	switch strings.TrimSpace(e.PersonID) {
	case "", "0", "None", "none", "null", "NULL":
		return false
	}
	return true
}

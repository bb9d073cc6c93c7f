package model

import "strings"

// LineupSnapshot is the set of players a team had on the floor immediately
// before an event was applied.
type LineupSnapshot struct {
	GameID      string   `json:"game_id"`
	TeamTricode string   `json:"team_tricode"`
	Period      int      `json:"period"`
	Clock       string   `json:"clock"`
	EventNum    int      `json:"event_num"`
	PlayerIDs   []string `json:"player_ids"`   // sorted ascending
	PlayerNames []string `json:"player_names"` // same order, unknown ids omitted
}

// IDs returns the comma-joined player ids.
func (s LineupSnapshot) IDs() string { return strings.Join(s.PlayerIDs, ",") }

// Names returns the comma-joined display names.
func (s LineupSnapshot) Names() string { return strings.Join(s.PlayerNames, ",") }

// AnomalyKind classifies a substitution that could not be applied.
type AnomalyKind string

const (
	AnomalyUnknownTeam      AnomalyKind = "unknown_team"
	AnomalyMissingPlayer    AnomalyKind = "missing_player"
	AnomalyUnknownDirection AnomalyKind = "unknown_direction"
)

// Anomaly records a skipped substitution.
type Anomaly struct {
	EventNum    int         `json:"event_num"`
	TeamTricode string      `json:"team_tricode"`
	PersonID    string      `json:"person_id"`
	Kind        AnomalyKind `json:"kind"`
	Message     string      `json:"message"`
}

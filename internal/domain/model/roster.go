package model

import "strings"

// StartingFive is the number of players a team has on the floor.
const StartingFive = 5

// Player is a rostered player for one game.
type Player struct {
	ID         string
	FirstName  string
	FamilyName string
	Starter    bool
}

// Name is the player's display name, "First Last".
func (p Player) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.FamilyName)
}

// TeamRoster lists a team's players in the order the boxscore delivered them.
type TeamRoster struct {
	Tricode string
	Players []Player
}

// Starters returns the ids of the flagged starters and whether exactly five
// were flagged. When they were not, the first five listed players are
// returned instead.
func (t TeamRoster) Starters() (ids []string, flagged bool) {
	for _, p := range t.Players {
		if p.Starter {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == StartingFive {
		return ids, true
	}

	n := min(StartingFive, len(t.Players))
	ids = make([]string, 0, n)
	for _, p := range t.Players[:n] {
		ids = append(ids, p.ID)
	}
	return ids, false
}

// Roster is the per-game roster snapshot taken from the boxscore.
type Roster struct {
	GameID string
	Home   TeamRoster
	Away   TeamRoster
}

// Teams returns home then away.
func (r Roster) Teams() []TeamRoster {
	return []TeamRoster{r.Home, r.Away}
}

// Names maps every rostered player id to a display name.
func (r Roster) Names() map[string]string {
	names := make(map[string]string, len(r.Home.Players)+len(r.Away.Players))
	for _, team := range r.Teams() {
		for _, p := range team.Players {
			names[p.ID] = p.Name()
		}
	}
	return names
}

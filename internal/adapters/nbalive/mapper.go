package nbalive

import (
	"strings"

	"github.com/okian/wolfwise/internal/domain/model"
)

// ToRoster converts a boxscore into the roster the lineup reconstructor is
// seeded from.
func ToRoster(box *Boxscore) model.Roster {
	return model.Roster{
		GameID: box.Game.GameID,
		Home:   toTeam(box.Game.HomeTeam),
		Away:   toTeam(box.Game.AwayTeam),
	}
}

func toTeam(t BoxscoreTeam) model.TeamRoster {
	tr := model.TeamRoster{Tricode: t.TeamTricode, Players: make([]model.Player, 0, len(t.Players))}
	for _, p := range t.Players {
		tr.Players = append(tr.Players, model.Player{
			ID:         string(p.PersonID),
			FirstName:  p.FirstName,
			FamilyName: p.FamilyName,
			Starter:    bool(p.Starter),
		})
	}
	return tr
}

// ToEvents converts play-by-play actions into events, keeping feed order.
func ToEvents(pbp *PlayByPlay) []model.Event {
	events := make([]model.Event, 0, len(pbp.Game.Actions))
	for _, a := range pbp.Game.Actions {
		period := a.Period
		if period == 0 {
			period = 1
		}
		events = append(events, model.Event{
			ActionNumber: a.ActionNumber,
			Period:       period,
			Clock:        a.Clock,
			TeamTricode:  strings.TrimSpace(a.TeamTricode),
			ActionType:   a.ActionType,
			SubType:      a.SubType,
			PersonID:     string(a.PersonID),
			Qualifiers:   a.Qualifiers,
			Description:  a.Description,
			PlayerNameI:  a.PlayerNameI,
			ScoreHome:    int(a.ScoreHome),
			ScoreAway:    int(a.ScoreAway),
			ScoreChange:  bool(a.IsScoreChange),
			ScoreMargin:  int(a.ScoreMargin),
		})
	}
	return events
}

// Team returns the side of the boxscore whose tricode matches, if any.
func (g BoxscoreGame) Team(tricode string) (BoxscoreTeam, bool) {
	switch {
	case strings.EqualFold(g.HomeTeam.TeamTricode, tricode):
		return g.HomeTeam, true
	case strings.EqualFold(g.AwayTeam.TeamTricode, tricode):
		return g.AwayTeam, true
	}
	return BoxscoreTeam{}, false
}

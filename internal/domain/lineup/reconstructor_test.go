package lineup_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"testing"

	lineup "github.com/okian/wolfwise/internal/domain/lineup"
	"github.com/okian/wolfwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const gameID = "0022400123"

// team builds a roster of n players with ids prefix+01.. and the first five
// flagged as starters.
func team(code string, prefix int, n int) model.TeamRoster {
	tr := model.TeamRoster{Tricode: code}
	for i := 1; i <= n; i++ {
		tr.Players = append(tr.Players, model.Player{
			ID:         fmt.Sprintf("%d%02d", prefix, i),
			FirstName:  code,
			FamilyName: fmt.Sprintf("Player%d", i),
			Starter:    i <= 5,
		})
	}
	return tr
}

func roster() model.Roster {
	return model.Roster{GameID: gameID, Home: team("MIN", 1, 12), Away: team("DEN", 2, 12)}
}

func play(num int, code, actionType string) model.Event {
	return model.Event{ActionNumber: num, Period: 1, Clock: "PT11:00.00", TeamTricode: code, ActionType: actionType}
}

func sub(num int, code, dir, id string, qualifiers ...string) model.Event {
	e := play(num, code, model.ActionSubstitution)
	e.SubType, e.PersonID, e.Qualifiers = dir, id, qualifiers
	return e
}

// lineupAt returns the ids of team code in the snapshot taken for event num.
func lineupAt(res lineup.Result, num int, code string) []string {
	for _, s := range res.Snapshots {
		if s.EventNum == num && s.TeamTricode == code {
			return s.PlayerIDs
		}
	}
	return nil
}

var (
	minStarters = []string{"101", "102", "103", "104", "105"}
	denStarters = []string{"201", "202", "203", "204", "205"}
)

func TestReconstruct_NoSubstitutions(t *testing.T) {
	Convey("Given five flagged starters per team and no substitutions", t, func() {
		events := []model.Event{play(1, "", "period"), play(2, "MIN", "2pt"), play(3, "DEN", "rebound")}

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)

			Convey("Then every snapshot is the starting five, home before away", func() {
				So(err, ShouldBeNil)
				So(res.GameID, ShouldEqual, gameID)
				So(len(res.Snapshots), ShouldEqual, 6)
				for i, s := range res.Snapshots {
					if i%2 == 0 {
						So(s.TeamTricode, ShouldEqual, "MIN")
						So(s.PlayerIDs, ShouldResemble, minStarters)
					} else {
						So(s.TeamTricode, ShouldEqual, "DEN")
						So(s.PlayerIDs, ShouldResemble, denStarters)
					}
					So(s.EventNum, ShouldEqual, events[i/2].ActionNumber)
					So(len(s.PlayerNames), ShouldEqual, 5)
				}
				So(res.Anomalies, ShouldBeEmpty)
				So(res.FallbackTeams, ShouldBeEmpty)
			})
		})
	})
}

func TestReconstruct_OutThenIn(t *testing.T) {
	Convey("Given an out for 101 followed by an in for 106", t, func() {
		events := []model.Event{
			sub(10, "MIN", model.SubTypeOut, "101"),
			sub(11, "MIN", model.SubTypeIn, "106"),
			play(12, "MIN", "3pt"),
		}

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)
			So(err, ShouldBeNil)

			Convey("Then the snapshot before the substitution has 101 and not 106", func() {
				So(lineupAt(res, 10, "MIN"), ShouldResemble, minStarters)
			})

			Convey("Then the snapshot after it has 106 in place of 101", func() {
				So(lineupAt(res, 12, "MIN"), ShouldResemble, []string{"102", "103", "104", "105", "106"})
			})

			Convey("Then the other team is untouched", func() {
				So(lineupAt(res, 12, "DEN"), ShouldResemble, denStarters)
			})
		})

		Convey("When the events are folded by hand", func() {
			state, _, err := lineup.Seed(roster())
			So(err, ShouldBeNil)
			for _, e := range events {
				state, _ = state.Apply(e)
			}

			Convey("Then the ledger ends with the entrant", func() {
				ledger := state.Ledger("MIN")
				So(len(ledger), ShouldEqual, 5)
				So(ledger[len(ledger)-1], ShouldEqual, "106")
			})
		})
	})
}

func TestReconstruct_Anomalies(t *testing.T) {
	Convey("Given substitutions that cannot be attributed", t, func() {
		events := []model.Event{
			sub(1, "MIN", model.SubTypeIn, ""),
			sub(2, "MIN", model.SubTypeIn, "None"),
			sub(3, "LAL", model.SubTypeIn, "999"),
			sub(4, "MIN", "swap", "106"),
			play(5, "MIN", "2pt"),
		}

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)

			Convey("Then each is recorded and the state is unchanged", func() {
				So(err, ShouldBeNil)
				So(len(res.Anomalies), ShouldEqual, 4)
				So(res.Anomalies[0].Kind, ShouldEqual, model.AnomalyMissingPlayer)
				So(res.Anomalies[1].Kind, ShouldEqual, model.AnomalyMissingPlayer)
				So(res.Anomalies[2].Kind, ShouldEqual, model.AnomalyUnknownTeam)
				So(res.Anomalies[2].TeamTricode, ShouldEqual, "LAL")
				So(res.Anomalies[3].Kind, ShouldEqual, model.AnomalyUnknownDirection)
				So(lineupAt(res, 5, "MIN"), ShouldResemble, minStarters)
			})

			Convey("Then snapshots are still emitted for the skipped events", func() {
				So(len(res.Snapshots), ShouldEqual, 2*len(events))
				So(lineupAt(res, 1, "MIN"), ShouldResemble, minStarters)
			})
		})
	})
}

func TestReconstruct_UnpairedIns(t *testing.T) {
	Convey("Given six consecutive ins with no outs", t, func() {
		var events []model.Event
		for i, id := range []string{"106", "107", "108", "109", "110", "111"} {
			events = append(events, sub(i+1, "MIN", model.SubTypeIn, id))
		}
		events = append(events, play(7, "MIN", "2pt"))

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)

			Convey("Then the lineup is the last five entrants, never six", func() {
				So(err, ShouldBeNil)
				So(lineupAt(res, 7, "MIN"), ShouldResemble, []string{"107", "108", "109", "110", "111"})
				So(res.Repairs, ShouldEqual, 6)
				for _, s := range res.Snapshots {
					So(len(s.PlayerIDs), ShouldEqual, 5)
				}
			})
		})

		Convey("When the events are folded by hand", func() {
			state, _, _ := lineup.Seed(roster())
			for _, e := range events {
				state, _ = state.Apply(e)
			}

			Convey("Then the ledger holds exactly five entries", func() {
				So(state.Ledger("MIN"), ShouldResemble, []string{"107", "108", "109", "110", "111"})
			})
		})
	})
}

func TestReconstruct_StarterFallback(t *testing.T) {
	Convey("Given a home team with only four flagged starters", t, func() {
		r := roster()
		r.Home.Players[0].Starter = false

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), r, []model.Event{play(1, "", "period")})

			Convey("Then the first five listed players start", func() {
				So(err, ShouldBeNil)
				So(res.FallbackTeams, ShouldResemble, []string{"MIN"})
				So(lineupAt(res, 1, "MIN"), ShouldResemble, minStarters)
			})
		})

		Convey("When six starters are flagged on the away team", func() {
			r.Away.Players[7].Starter = true
			r.Away.Players[0], r.Away.Players[7] = r.Away.Players[7], r.Away.Players[0]
			state, fallback, err := lineup.Seed(r)

			Convey("Then the ledger is seeded in listed order", func() {
				So(err, ShouldBeNil)
				So(fallback, ShouldResemble, []string{"MIN", "DEN"})
				So(state.Ledger("DEN"), ShouldResemble, []string{"208", "202", "203", "204", "205"})
				So(state.OnFloor("DEN"), ShouldResemble, []string{"202", "203", "204", "205", "208"})
			})
		})
	})
}

func TestReconstruct_StartPeriod(t *testing.T) {
	Convey("Given period-start substitutions", t, func() {
		events := []model.Event{
			sub(1, "MIN", model.SubTypeOut, "101"),
			sub(2, "MIN", model.SubTypeIn, "106"),
			sub(3, "MIN", model.SubTypeOut, "102", model.QualifierStartPeriod),
			sub(4, "MIN", model.SubTypeIn, "101", model.QualifierStartPeriod),
			play(5, "MIN", "jumpball"),
		}

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)

			Convey("Then the lineup is reset from the latest entrants", func() {
				So(err, ShouldBeNil)
				So(res.Resets, ShouldEqual, 2)
				So(lineupAt(res, 5, "MIN"), ShouldResemble, []string{"101", "103", "104", "105", "106"})
			})
		})
	})
}

func TestReconstruct_Names(t *testing.T) {
	Convey("Given a player entering who is not on the roster", t, func() {
		events := []model.Event{
			sub(1, "MIN", model.SubTypeOut, "105"),
			sub(2, "MIN", model.SubTypeIn, "999"),
			play(3, "MIN", "2pt"),
		}

		Convey("When the game is reconstructed", func() {
			res, err := lineup.New().Reconstruct(context.Background(), roster(), events)
			So(err, ShouldBeNil)

			Convey("Then unknown ids keep their slot but get no name", func() {
				var snap model.LineupSnapshot
				for _, s := range res.Snapshots {
					if s.EventNum == 3 && s.TeamTricode == "MIN" {
						snap = s
					}
				}
				So(snap.PlayerIDs, ShouldResemble, []string{"102", "103", "104", "105", "999"})
				So(snap.PlayerNames, ShouldResemble, []string{
					"MIN Player2", "MIN Player3", "MIN Player4", "MIN Player5",
				})
				So(snap.IDs(), ShouldEqual, "102,103,104,105,999")
			})
		})
	})
}

func TestReconstruct_UnresolvableRoster(t *testing.T) {
	Convey("Given rosters that do not identify two teams", t, func() {
		events := []model.Event{play(1, "", "period")}
		cases := []struct {
			name   string
			mutate func(*model.Roster)
		}{
			{"missing away code", func(r *model.Roster) { r.Away.Tricode = "" }},
			{"same code twice", func(r *model.Roster) { r.Away.Tricode = "MIN" }},
			{"empty home roster", func(r *model.Roster) { r.Home.Players = nil }},
		}

		for _, tc := range cases {
			Convey("When the roster has a "+tc.name, func() {
				r := roster()
				tc.mutate(&r)
				res, err := lineup.New().Reconstruct(context.Background(), r, events)

				Convey("Then the game fails without snapshots", func() {
					So(errors.Is(err, lineup.ErrUnresolvableRoster), ShouldBeTrue)
					So(res.Snapshots, ShouldBeEmpty)
				})
			})
		}
	})
}

// pairedSubs generates out/in pairs where each entrant comes from the bench
// and is not among the team's last five entrants.
func pairedSubs(seed int64, n int) []model.Event {
	rng := rand.New(rand.NewSource(seed))
	floor := map[string][]string{"MIN": slices.Clone(minStarters), "DEN": slices.Clone(denStarters)}
	ledger := map[string][]string{"MIN": slices.Clone(minStarters), "DEN": slices.Clone(denStarters)}
	prefix := map[string]int{"MIN": 1, "DEN": 2}

	var events []model.Event
	num := 1
	for range n {
		code := []string{"MIN", "DEN"}[rng.Intn(2)]
		var in string
		for {
			in = fmt.Sprintf("%d%02d", prefix[code], rng.Intn(12)+1)
			if !slices.Contains(ledger[code], in) {
				break
			}
		}
		out := floor[code][rng.Intn(5)]
		events = append(events, sub(num, code, model.SubTypeOut, out), sub(num+1, code, model.SubTypeIn, in))
		num += 2

		ledger[code] = append(ledger[code][1:], in)
		floor[code] = slices.Clone(ledger[code])
	}
	return events
}

func TestReconstruct_Properties(t *testing.T) {
	Convey("Given a long stream of well-formed paired substitutions", t, func() {
		events := pairedSubs(42, 200)
		rec := lineup.New()

		Convey("Then every snapshot has exactly five players", func() {
			res, err := rec.Reconstruct(context.Background(), roster(), events)
			So(err, ShouldBeNil)
			So(len(res.Snapshots), ShouldEqual, 2*len(events))
			for _, s := range res.Snapshots {
				So(len(s.PlayerIDs), ShouldEqual, 5)
			}
		})

		Convey("Then reruns produce identical output", func() {
			first, err := rec.Reconstruct(context.Background(), roster(), events)
			So(err, ShouldBeNil)
			second, err := rec.Reconstruct(context.Background(), roster(), events)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("Then games reconstructed in parallel match serial runs", func() {
			want, _ := rec.Reconstruct(context.Background(), roster(), events)
			results := make([]lineup.Result, 8)
			var wg sync.WaitGroup
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = rec.Reconstruct(context.Background(), roster(), events)
				}(i)
			}
			wg.Wait()
			for _, got := range results {
				So(got, ShouldResemble, want)
			}
		})
	})
}

func TestState_ApplyIsPure(t *testing.T) {
	Convey("Given a seeded state", t, func() {
		before, _, err := lineup.Seed(roster())
		So(err, ShouldBeNil)

		Convey("When a substitution is applied", func() {
			after, out := before.Apply(sub(1, "MIN", model.SubTypeIn, "106"))

			Convey("Then the original state is unchanged", func() {
				So(out.Applied, ShouldBeTrue)
				So(out.Repaired, ShouldBeTrue)
				So(before.OnFloor("MIN"), ShouldResemble, minStarters)
				So(before.Ledger("MIN"), ShouldResemble, minStarters)
				So(after.OnFloor("MIN"), ShouldResemble, []string{"102", "103", "104", "105", "106"})
				So(after.Teams(), ShouldResemble, []string{"MIN", "DEN"})
			})
		})

		Convey("When a non-substitution is applied", func() {
			after, out := before.Apply(play(1, "MIN", "2pt"))

			Convey("Then nothing happens", func() {
				So(out, ShouldResemble, lineup.Outcome{})
				So(after.OnFloor("DEN"), ShouldResemble, denStarters)
			})
		})
	})
}

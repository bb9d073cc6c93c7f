package nbalive_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/wolfwise/internal/adapters/fetch"
	"github.com/okian/wolfwise/internal/adapters/nbalive"
	"github.com/okian/wolfwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func newServer() *httptest.Server {
	mux := http.NewServeMux()
	serveFile := func(path string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			body, err := os.ReadFile(path)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		}
	}
	mux.HandleFunc("/boxscore/boxscore_0022400123.json", serveFile("testdata/boxscore.json"))
	mux.HandleFunc("/playbyplay/playbyplay_0022400123.json", serveFile("testdata/playbyplay.json"))
	mux.HandleFunc("/scoreboard/todaysScoreboard_00.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"scoreboard":{"gameDate":"2024-11-19","games":[
			{"gameId":"0022400120","homeTeam":{"teamTricode":"BOS"},"awayTeam":{"teamTricode":"NYK"}},
			{"gameId":"0022400123","homeTeam":{"teamTricode":"MIN"},"awayTeam":{"teamTricode":"DEN"}}]}}`))
	})
	return httptest.NewServer(mux)
}

func TestClient(t *testing.T) {
	Convey("Given a live CDN", t, func() {
		srv := newServer()
		defer srv.Close()
		c := nbalive.New(srv.URL+"/", fetch.New("nba_live", fetch.WithRetry(1, time.Millisecond)))
		ctx := context.Background()

		Convey("When looking for today's game", func() {
			id, err := c.TodaysGame(ctx, "min")
			none, err2 := c.TodaysGame(ctx, "LAL")

			Convey("Then the team's game is found case-insensitively", func() {
				So(err, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(id, ShouldEqual, "0022400123")
				So(none, ShouldEqual, "")
			})
		})

		Convey("When the boxscore is fetched", func() {
			box, err := c.Boxscore(ctx, "0022400123")
			So(err, ShouldBeNil)

			Convey("Then loosely typed fields decode", func() {
				So(box.Game.HomeTeam.TeamTricode, ShouldEqual, "MIN")
				So(int(box.Game.AwayTeam.Score), ShouldEqual, 51)
				So(bool(box.Game.IsEndOfPeriod), ShouldBeFalse)
				p := box.Game.HomeTeam.Players[0]
				So(string(p.PersonID), ShouldEqual, "1630162")
				So(bool(p.Starter), ShouldBeTrue)
				So(int(p.Statistics.FieldGoalsAttempted), ShouldEqual, 13)
				So(p.Statistics.MinutesCalculated, ShouldEqual, "PT19M")
			})

			Convey("Then the roster flags string and boolean starters", func() {
				r := nbalive.ToRoster(box)
				home, flagged := r.Home.Starters()
				So(flagged, ShouldBeTrue)
				So(home, ShouldResemble, []string{"1630162", "203497", "201144", "1630183", "1628978"})
				_, flagged = r.Away.Starters()
				So(flagged, ShouldBeTrue)
				So(r.Names()["203999"], ShouldEqual, "Nikola Jokić")
			})

			Convey("Then a team can be picked by tricode", func() {
				team, ok := box.Game.Team("DEN")
				So(ok, ShouldBeTrue)
				So(len(team.Players), ShouldEqual, 6)
				_, ok = box.Game.Team("LAL")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the play-by-play is fetched", func() {
			pbp, err := c.PlayByPlay(ctx, "0022400123")
			So(err, ShouldBeNil)
			events := nbalive.ToEvents(pbp)

			Convey("Then actions become ordered events", func() {
				So(len(events), ShouldEqual, 6)
				So(events[0].HasPerson(), ShouldBeFalse)
				So(events[1].ScoreHome, ShouldEqual, 3)
				So(events[1].ScoreChange, ShouldBeTrue)
				So(events[2].IsSubstitution(), ShouldBeTrue)
				So(events[2].SubType, ShouldEqual, model.SubTypeOut)
				So(events[3].PersonID, ShouldEqual, "1629675")
				So(events[5].HasPerson(), ShouldBeFalse)
			})
		})

		Convey("When a game has no feed", func() {
			_, err := c.Boxscore(ctx, "0000000000")

			Convey("Then a not-found error comes back", func() {
				So(fetch.IsNotFound(err), ShouldBeTrue)
			})
		})
	})
}

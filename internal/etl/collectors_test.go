package etl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/adapters/repository"
	"github.com/okian/wolfwise/internal/adapters/statsapi"
	"github.com/okian/wolfwise/internal/config"
	"github.com/okian/wolfwise/internal/domain/frame"
	"github.com/okian/wolfwise/internal/etl"
	. "github.com/smartystreets/goconvey/convey"
)

func lineupFrame(groups ...string) *frame.Frame {
	f := frame.New("GROUP_SET", "GROUP_ID", "GROUP_NAME", "TEAM_ID", "TEAM_ABBREVIATION", "GP", "W_PCT", "PTS", "PTS_RANK")
	for i, g := range groups {
		_ = f.Append("Lineups", "-1630162-", g, int64(1610612750), "MIN", float64(10+i), 0.6, 101.0, int64(i+1))
	}
	return f
}

func TestLineupStats(t *testing.T) {
	Convey("Given a lineup stats collector", t, func() {
		ctx := context.Background()
		store := repository.NewMemory()
		stats := &fakeStats{lineups: map[int]*frame.Frame{
			2: lineupFrame("A. Edwards - R. Gobert"),
			5: lineupFrame("A. Edwards - R. Gobert - M. Conley - J. McDaniels - N. Alexander-Walker", "A. Edwards - N. Reid - M. Conley - J. McDaniels - D. DiVincenzo"),
		}}
		s := etl.Settings{TeamID: 1610612750, Season: "2024-25", LineupSizes: []int{2, 3, 5}}
		c := etl.NewLineupStats(stats, store, s, nil)

		Convey("When it runs with one size failing", func() {
			err := c.Run(ctx)

			Convey("Then the sizes that answered are stored", func() {
				So(err, ShouldBeNil)
				So(len(stats.lineupCalls), ShouldEqual, 3)
				rows := store.Rows(etl.TableLineups)
				So(len(rows), ShouldEqual, 3)

				So(rows[0]["lineup_size"], ShouldEqual, int64(2))
				So(rows[0]["player1"], ShouldEqual, "A. Edwards")
				So(rows[0]["player2"], ShouldEqual, "R. Gobert")
				So(rows[0]["player3"], ShouldBeNil)
				So(rows[0]["gp"], ShouldEqual, int64(10))
				So(rows[0]["w_pct"], ShouldEqual, 0.6)
				So(rows[0]["season"], ShouldEqual, "2024-25")
				So(rows[0], ShouldNotContainKey, "group_set")

				So(rows[1]["player5"], ShouldEqual, "N. Alexander-Walker")
			})
		})

		Convey("When it runs twice", func() {
			So(c.Run(ctx), ShouldBeNil)
			So(c.Run(ctx), ShouldBeNil)

			Convey("Then the season is replaced", func() {
				So(len(store.Rows(etl.TableLineups)), ShouldEqual, 3)
			})
		})

		Convey("When no season is configured and the calendar crosses October 1", func() {
			now := time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC)
			s := etl.Settings{TeamID: 1610612750, LineupSizes: []int{2}, Now: func() time.Time { return now }}
			c := etl.NewLineupStats(stats, store, s, nil)

			So(c.Run(ctx), ShouldBeNil)
			now = time.Date(2025, time.October, 1, 1, 0, 0, 0, time.UTC)
			So(c.Run(ctx), ShouldBeNil)

			Convey("Then each run uses the season in progress", func() {
				So(stats.lineupCalls[0].Season, ShouldEqual, "2024-25")
				So(stats.lineupCalls[1].Season, ShouldEqual, "2025-26")
				rows := store.Rows(etl.TableLineups)
				So(len(rows), ShouldEqual, 2)
				So(rows[0]["season"], ShouldEqual, "2024-25")
				So(rows[1]["season"], ShouldEqual, "2025-26")
			})
		})

		Convey("When no size answers", func() {
			c := etl.NewLineupStats(&fakeStats{}, store, s, nil)
			err := c.Run(ctx)

			Convey("Then ErrNoData is returned and nothing is written", func() {
				So(errors.Is(err, etl.ErrNoData), ShouldBeTrue)
				So(store.Tables(), ShouldEqual, 0)
			})
		})
	})
}

func TestSplitGroupName(t *testing.T) {
	Convey("Group names split on spaced hyphens only", t, func() {
		So(etl.SplitGroupName("K. Towns - N. Alexander-Walker"), ShouldResemble, []string{"K. Towns", "N. Alexander-Walker"})
		So(etl.SplitGroupName(""), ShouldBeNil)
	})
}

func TestLeaders(t *testing.T) {
	Convey("Given a leaders collector", t, func() {
		ctx := context.Background()
		store := repository.NewMemory()
		stats := &fakeStats{players: func(q statsapi.PlayerStatsQuery) (*frame.Frame, error) {
			if q.MeasureType == statsapi.MeasureAdvanced {
				f := frame.New("PLAYER_ID", "NET_RATING")
				_ = f.Append(int64(1), 5.5)
				_ = f.Append(int64(2), 9.1)
				return f, nil
			}
			f := frame.New("PLAYER_ID", "PTS")
			_ = f.Append(int64(1), int64(30))
			_ = f.Append(int64(2), int64(30))
			_ = f.Append(int64(3), int64(12))
			return f, nil
		}}
		c := etl.NewLeaders(stats, store, etl.Settings{Season: "2024-25"}, nil)

		Convey("When it runs", func() {
			err := c.Run(ctx)

			Convey("Then six league-wide tables are written with ranks", func() {
				So(err, ShouldBeNil)
				So(len(stats.playerCalls), ShouldEqual, 6)
				for _, q := range stats.playerCalls {
					So(q.TeamID, ShouldEqual, 0)
					So(q.PerMode, ShouldEqual, statsapi.PerModeTotals)
				}

				base := store.Rows("last_5_base")
				So(len(base), ShouldEqual, 3)
				So(base[0]["PTS_RANK"], ShouldEqual, int64(1))
				So(base[1]["PTS_RANK"], ShouldEqual, int64(1))
				So(base[2]["PTS_RANK"], ShouldEqual, int64(3))

				adv := store.Rows("full_season_advanced")
				So(adv[1]["NET_RATING_RANK"], ShouldEqual, int64(1))
			})
		})

		Convey("When the source fails", func() {
			c := etl.NewLeaders(&fakeStats{}, store, etl.Settings{Season: "2024-25"}, nil)
			err := c.Run(ctx)

			Convey("Then every table reports the failure", func() {
				So(errors.Is(err, errSource), ShouldBeTrue)
				So(store.Tables(), ShouldEqual, 0)
			})
		})
	})
}

func TestHustle(t *testing.T) {
	Convey("Given a hustle collector", t, func() {
		ctx := context.Background()
		store := repository.NewMemory()
		perGame := frame.New("PLAYER_ID", "PLAYER_NAME", "TEAM_ID", "TEAM_ABBREVIATION", "AGE", "G", "MIN", "DEFLECTIONS", "BOX_OUTS")
		_ = perGame.Append(int64(1630162), "Anthony Edwards", int64(1610612750), "MIN", 23.0, int64(20), 35.5, 2.5, nil)
		stats := &fakeStats{hustle: map[string]*frame.Frame{statsapi.PerModePerGame: perGame}}
		s := etl.Settings{TeamID: 1610612750, Season: "2024-25", SeasonType: statsapi.SeasonTypeRegular}
		c := etl.NewHustle(stats, store, s, nil)

		Convey("When totals fail but per-game answers", func() {
			err := c.Run(ctx)

			Convey("Then the per-game partition is written and the failure reported", func() {
				So(errors.Is(err, errSource), ShouldBeTrue)
				rows := store.Rows(etl.TableHustle)
				So(len(rows), ShouldEqual, 1)
				So(rows[0]["player_id"], ShouldEqual, int64(1630162))
				So(rows[0]["age"], ShouldEqual, int64(23))
				So(rows[0]["games_played"], ShouldEqual, int64(20))
				So(rows[0]["deflections"], ShouldEqual, 2.5)
				So(rows[0]["box_outs"], ShouldEqual, 0.0)
				So(rows[0]["charges_drawn"], ShouldEqual, 0.0)
				So(rows[0]["per_mode"], ShouldEqual, statsapi.PerModePerGame)
				So(rows[0]["season_type"], ShouldEqual, statsapi.SeasonTypeRegular)
			})
		})
	})

	Convey("HustleFrame stamps both timestamps identically", t, func() {
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		f := frame.New("PLAYER_ID")
		_ = f.Append(int64(1))
		out := etl.HustleFrame(f, "2024-25", "Playoffs", "Totals", now)
		So(out.Value(0, "created_at"), ShouldEqual, "2025-01-02T03:04:05Z")
		So(out.Value(0, "updated_at"), ShouldEqual, out.Value(0, "created_at"))
	})
}

func TestPlayerStats(t *testing.T) {
	Convey("Given a player stats collector", t, func() {
		ctx := context.Background()
		store := repository.NewMemory()
		logs := frame.New("GAME_ID")
		for range 30 {
			_ = logs.Append("g")
		}
		stats := &fakeStats{
			logs: logs,
			players: func(q statsapi.PlayerStatsQuery) (*frame.Frame, error) {
				f := frame.New("PLAYER_ID", "PLAYER_NAME", "GP", "MIN", "PTS", "FG_PCT", "FG3_PCT", "FT_PCT", "TEAM_ID")
				_ = f.Append(int64(2), "Rudy Gobert", int64(30), 28.0, 11.0, 0.654, nil, 0.6, int64(1610612750))
				_ = f.Append(int64(1), "Anthony Edwards", int64(30), 36.2, 27.1, 0.457, 0.391, 0.83, int64(1610612750))
				return f, nil
			},
		}
		c := etl.NewPlayerStats(stats, store, etl.Settings{TeamID: 1610612750, Season: "2024-25"}, nil)

		Convey("When it runs", func() {
			err := c.Run(ctx)

			Convey("Then three stat card tables are written", func() {
				So(err, ShouldBeNil)
				So(len(stats.playerCalls), ShouldEqual, 3)
				So(stats.playerCalls[0].PerMode, ShouldEqual, statsapi.PerModePerGame)
				So(stats.playerCalls[0].TeamID, ShouldEqual, 1610612750)

				season := store.Rows("timberwolves_player_stats_season")
				So(len(season), ShouldEqual, 2)
				So(season[0]["PLAYER_NAME"], ShouldEqual, "Anthony Edwards")
				So(season[0]["FG_PCT"], ShouldEqual, "45.7%")
				So(season[1]["FG3_PCT"], ShouldEqual, "N/A")
				So(season[0]["GAMES_REMAINING"], ShouldEqual, int64(52))
				So(season[0]["TIMEFRAME"], ShouldEqual, "Full Season")
				So(season[0], ShouldNotContainKey, "TEAM_ID")

				last5 := store.Rows("timberwolves_player_stats_last_5")
				So(last5[0]["TIMEFRAME"], ShouldEqual, "Last 5 games")
				So(last5[0], ShouldNotContainKey, "GAMES_REMAINING")
			})
		})

		Convey("When the game logs are unavailable", func() {
			stats.logs = nil
			err := c.Run(ctx)

			Convey("Then only the season table fails", func() {
				So(errors.Is(err, errSource), ShouldBeTrue)
				So(store.Rows("timberwolves_player_stats_season"), ShouldBeEmpty)
				So(len(store.Rows("timberwolves_player_stats_last_10")), ShouldEqual, 2)
			})
		})
	})

	Convey("FormatPct renders fractions", t, func() {
		So(etl.FormatPct(0.5), ShouldEqual, "50.0%")
		So(etl.FormatPct(nil), ShouldEqual, "N/A")
		So(etl.Timeframe(10), ShouldEqual, "Last 10 games")
	})
}

func TestRecords(t *testing.T) {
	Convey("Given a records collector over three pages", t, func() {
		ctx := context.Background()
		store := repository.NewMemory()
		pages := []reference.Page{
			{RecordType: reference.TypeCareer, URL: "https://example.test/pts_career.html"},
			{RecordType: reference.TypeActive, URL: "https://example.test/broken.html"},
			{RecordType: reference.TypeSingleSeason, URL: "https://example.test/trb_season.html"},
		}
		source := &fakeRecords{pages: map[string][]reference.Record{
			pages[0].URL: {{Rank: "1", Player: "LeBron James", Value: 41000, RecordType: reference.TypeCareer, StatType: "pts"}},
			pages[2].URL: {
				{Rank: "1", Player: "Wilt Chamberlain", Value: 2149, Season: "1960-61", RecordType: reference.TypeSingleSeason, StatType: "trb"},
				{Rank: "2", Player: "Wilt Chamberlain", Value: 2052, Season: "1961-62", RecordType: reference.TypeSingleSeason, StatType: "trb"},
			},
		}}
		var pauses []time.Duration
		sleep := func(_ context.Context, d time.Duration) error {
			pauses = append(pauses, d)
			return nil
		}
		s := etl.Settings{RecordsPages: pages, RecordsDelayLo: 3 * time.Second, RecordsDelayHi: 6 * time.Second}
		c := etl.NewRecords(source, store, s, etl.WithSleep(sleep))

		Convey("When it runs", func() {
			err := c.Run(ctx)

			Convey("Then good pages are stored with ids and failed ones skipped", func() {
				So(err, ShouldBeNil)
				rows := store.Rows(etl.TableRecords)
				So(len(rows), ShouldEqual, 3)
				So(rows[0]["Player"], ShouldEqual, "LeBron James")
				So(rows[0]["id"], ShouldNotBeEmpty)
				So(rows[0]["id"], ShouldNotEqual, rows[1]["id"])
				So(rows[2]["Season"], ShouldEqual, "1961-62")
			})

			Convey("Then it pauses between pages but not after the last", func() {
				So(len(pauses), ShouldEqual, 2)
				for _, d := range pauses {
					So(d, ShouldBeGreaterThanOrEqualTo, 3*time.Second)
					So(d, ShouldBeLessThan, 6*time.Second)
				}
			})
		})

		Convey("When the context is cancelled mid-run", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			c := etl.NewRecords(source, store, s)
			err := c.Run(cctx)

			Convey("Then the run stops without writing", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(store.Tables(), ShouldEqual, 0)
			})
		})

		Convey("When every page fails", func() {
			c := etl.NewRecords(&fakeRecords{}, store, s, etl.WithSleep(sleep))
			err := c.Run(ctx)

			Convey("Then ErrNoData is returned", func() {
				So(errors.Is(err, etl.ErrNoData), ShouldBeTrue)
			})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry with two jobs", t, func() {
		ok := &fakeJob{name: "ok"}
		bad := &fakeJob{name: "bad", err: errSource}
		r := etl.NewRegistry(nil, ok, bad)

		Convey("Names keep registration order", func() {
			So(r.Names(), ShouldResemble, []string{"ok", "bad"})
			So(r.Has("ok"), ShouldBeTrue)
		})

		Convey("Run dispatches by name and wraps failures", func() {
			So(r.Run(context.Background(), "ok"), ShouldBeNil)
			So(ok.runs, ShouldEqual, 1)

			err := r.Run(context.Background(), "bad")
			So(errors.Is(err, errSource), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "bad:")
		})

		Convey("Unknown names are rejected", func() {
			err := r.Run(context.Background(), "nope")
			So(errors.Is(err, etl.ErrUnknownJob), ShouldBeTrue)
		})

		Convey("Duplicate names are rejected", func() {
			So(errors.Is(r.Register(&fakeJob{name: "ok"}), etl.ErrDuplicateJob), ShouldBeTrue)
			So(func() { etl.NewRegistry(nil, ok, ok) }, ShouldPanic)
		})
	})
}

func TestSettings(t *testing.T) {
	Convey("Given configuration without a season", t, func() {
		cfg := config.New()
		cfg.Season = ""
		now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

		s, err := etl.SettingsFrom(cfg, func() time.Time { return now })
		So(err, ShouldBeNil)

		Convey("Then the season follows the clock", func() {
			So(s.CurrentSeason(), ShouldEqual, "2025-26")
			now = time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)
			So(s.CurrentSeason(), ShouldEqual, "2026-27")
		})

		Convey("When a season is configured", func() {
			cfg.Season = "2023-24"
			s, err := etl.SettingsFrom(cfg, nil)

			Convey("Then it is used as is", func() {
				So(err, ShouldBeNil)
				So(s.CurrentSeason(), ShouldEqual, "2023-24")
			})
		})

		Convey("When the configured season is malformed", func() {
			cfg.Season = "2023-25"
			_, err := etl.SettingsFrom(cfg, nil)

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

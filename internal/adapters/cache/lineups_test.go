package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/wolfwise/internal/adapters/cache"
	"github.com/okian/wolfwise/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func snaps() []model.LineupSnapshot {
	return []model.LineupSnapshot{
		{GameID: "g1", TeamTricode: "MIN", EventNum: 1, PlayerIDs: []string{"1", "2", "3", "4", "5"}},
		{GameID: "g1", TeamTricode: "DEN", EventNum: 1, PlayerIDs: []string{"6", "7", "8", "9", "10"}},
		{GameID: "g1", TeamTricode: "MIN", EventNum: 4, PlayerIDs: []string{"1", "2", "3", "4", "11"}},
		{GameID: "g1", TeamTricode: "DEN", EventNum: 4, PlayerIDs: []string{"6", "7", "8", "9", "10"}},
	}
}

func TestLineupCache(t *testing.T) {
	Convey("Given a redis server", t, func() {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		c := cache.New(client, cache.WithTTL(time.Hour))
		ctx := context.Background()

		Convey("When a game's lineups are stored", func() {
			So(c.Store(ctx, "g1", snaps()), ShouldBeNil)

			Convey("Then the last snapshot per team is cached with a TTL", func() {
				s, err := c.LatestLineup(ctx, "g1", "MIN")
				So(err, ShouldBeNil)
				So(s.EventNum, ShouldEqual, 4)
				So(s.PlayerIDs, ShouldResemble, []string{"1", "2", "3", "4", "11"})
				So(mr.TTL(cache.Key("g1", "MIN")), ShouldEqual, time.Hour)
			})

			Convey("Then one stream message per team is appended", func() {
				msgs, err := client.XRange(ctx, cache.DefaultStream, "-", "+").Result()
				So(err, ShouldBeNil)
				So(len(msgs), ShouldEqual, 2)
				So(msgs[0].Values["team"], ShouldEqual, "DEN")
				So(msgs[1].Values["team"], ShouldEqual, "MIN")
				So(msgs[1].Values["event_num"], ShouldEqual, "4")
			})
		})

		Convey("When nothing is cached for a team", func() {
			_, err := c.LatestLineup(ctx, "g9", "MIN")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, cache.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When there are no snapshots", func() {
			So(c.Store(ctx, "g2", nil), ShouldBeNil)

			Convey("Then nothing is written", func() {
				So(len(mr.Keys()), ShouldEqual, 0)
			})
		})
	})
}

func TestLatest(t *testing.T) {
	Convey("Latest keeps the final snapshot of each team", t, func() {
		got := cache.Latest(snaps())
		So(len(got), ShouldEqual, 2)
		So(got[0].TeamTricode, ShouldEqual, "DEN")
		So(got[1].EventNum, ShouldEqual, 4)
		So(cache.Latest(nil), ShouldBeEmpty)
	})
}

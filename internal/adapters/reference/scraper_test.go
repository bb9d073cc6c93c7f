package reference_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/wolfwise/internal/adapters/fetch"
	"github.com/okian/wolfwise/internal/adapters/reference"
	. "github.com/smartystreets/goconvey/convey"
)

func mustRead(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return b
}

func TestParse(t *testing.T) {
	Convey("Given a career leaders page with the table inside a comment", t, func() {
		page := reference.Page{RecordType: reference.TypeCareer, URL: "https://www.basketball-reference.com/leaders/pts_career.html"}
		recs, err := reference.Parse(mustRead("testdata/pts_career.html"), page)

		Convey("Then numeric rows are extracted and ranks carried forward", func() {
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 3)
			So(recs[0].Rank, ShouldEqual, "1")
			So(recs[0].Value, ShouldEqual, 41243.0)
			So(recs[0].StatType, ShouldEqual, "pts")
			So(recs[0].Season, ShouldEqual, "")
			So(recs[2].Player, ShouldEqual, "Karl Malone*")
			So(recs[2].Rank, ShouldEqual, "2")
		})
	})

	Convey("Given a single season page", t, func() {
		page := reference.Page{RecordType: reference.TypeSingleSeason, URL: "https://www.basketball-reference.com/leaders/trb_season.html"}
		recs, err := reference.Parse(mustRead("testdata/trb_season.html"), page)

		Convey("Then the season column is kept", func() {
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[1].Season, ShouldEqual, "1961-62")
			So(recs[1].StatType, ShouldEqual, "trb")
			So(recs[1].RecordType, ShouldEqual, reference.TypeSingleSeason)
		})

		Convey("Then records convert to a frame", func() {
			f := reference.ToFrame(recs)
			So(f.Columns, ShouldResemble, reference.Columns)
			So(f.Len(), ShouldEqual, 2)
			So(f.Value(0, "Value"), ShouldEqual, 2149.0)
		})
	})

	Convey("Given a page without tables", t, func() {
		_, err := reference.Parse([]byte("<html><body><p>blocked</p></body></html>"), reference.Page{RecordType: reference.TypeSingleSeason})

		Convey("Then ErrNoTable is returned", func() {
			So(errors.Is(err, reference.ErrNoTable), ShouldBeTrue)
		})
	})

	Convey("Given a table with no numeric values", t, func() {
		_, err := reference.Parse([]byte(`<table id="tot"><tr><td>1</td><td>x</td><td>n/a</td></tr></table>`), reference.Page{RecordType: reference.TypeCareer})

		Convey("Then ErrNoRecords is returned", func() {
			So(errors.Is(err, reference.ErrNoRecords), ShouldBeTrue)
		})
	})
}

func TestStatType(t *testing.T) {
	Convey("Stat types come from the leaders url", t, func() {
		So(reference.StatType("https://x/leaders/ast_active.html"), ShouldEqual, "ast")
		So(reference.StatType("https://x/leaders/fg3_pct_season.html"), ShouldEqual, "fg3_pct")
		So(reference.StatType("https://x/leaders/per.html"), ShouldEqual, "per")
		So(reference.StatType("https://x/players/"), ShouldEqual, "")
	})
}

func TestScraper(t *testing.T) {
	Convey("Given a site serving a leaders page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/leaders/pts_career.html" {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(mustRead("testdata/pts_career.html"))
		}))
		defer srv.Close()
		opts := append(reference.FetchOptions(), fetch.WithRetry(1, time.Millisecond))
		s := reference.New(fetch.New("reference", opts...))

		Convey("When the page is scraped", func() {
			recs, err := s.Records(context.Background(), reference.Page{RecordType: reference.TypeCareer, URL: srv.URL + "/leaders/pts_career.html"})

			Convey("Then records are returned", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 3)
			})
		})

		Convey("When the page is missing", func() {
			_, err := s.Records(context.Background(), reference.Page{RecordType: reference.TypeCareer, URL: srv.URL + "/leaders/nope_career.html"})

			Convey("Then a not-found error is returned", func() {
				So(fetch.IsNotFound(err), ShouldBeTrue)
			})
		})
	})
}

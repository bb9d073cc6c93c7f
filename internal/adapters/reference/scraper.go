// Package reference scrapes all-time leader pages from basketball-reference.
package reference

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/wolfwise/internal/adapters/fetch"
	"github.com/okian/wolfwise/internal/domain/frame"
)

// DefaultBaseURL is the site root.
const DefaultBaseURL = "https://www.basketball-reference.com"

// Record types as they appear on the leaders index.
const (
	TypeCareer       = "Career"
	TypeActive       = "Active"
	TypeSingleSeason = "Single Season"
)

// Columns of a records frame.
var Columns = []string{"Rank", "Player", "Value", "Season", "Record Type", "Stat Type"}

// Page is a leaders page to scrape.
type Page struct {
	RecordType string
	URL        string
}

// Record is one leaderboard line.
type Record struct {
	Rank       string
	Player     string
	Value      float64
	Season     string
	RecordType string
	StatType   string
}

// FetchOptions returns the headers the site expects from a browser.
func FetchOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithHeader("Accept", "text/html,application/xhtml+xml"),
		fetch.WithHeader("Accept-Language", "en-US,en;q=0.9"),
	}
}

// Getter is the subset of fetch.Client the scraper needs.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Scraper fetches and parses leaders pages.
type Scraper struct {
	get Getter
}

// New creates a scraper.
func New(get Getter) *Scraper {
	return &Scraper{get: get}
}

// Records fetches one page and parses it.
func (s *Scraper) Records(ctx context.Context, p Page) ([]Record, error) {
	body, err := s.get.Get(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	recs, err := Parse(body, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.URL, err)
	}
	return recs, nil
}

// Parse extracts records from a leaders page.
func Parse(html []byte, p Page) ([]Record, error) {
	// the site ships secondary tables inside HTML comments
	clean := bytes.ReplaceAll(html, []byte("<!--"), nil)
	clean = bytes.ReplaceAll(clean, []byte("-->"), nil)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	table := findTable(doc, p.RecordType)
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		rows = table.Find("tr")
	}

	statType := StatType(p.URL)
	var (
		out      []Record
		lastRank string
	)
	rows.Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("thead2") {
			return
		}
		cells := tr.Find("td, th")
		if cells.Length() < 3 {
			return
		}
		if r := strings.TrimSuffix(strings.TrimSpace(cells.Eq(0).Text()), "."); r != "" {
			lastRank = r
		}
		value, ok := parseValue(cells.Eq(2).Text())
		if !ok {
			return
		}
		rec := Record{
			Rank:       lastRank,
			Player:     strings.TrimSpace(cells.Eq(1).Text()),
			Value:      value,
			RecordType: p.RecordType,
			StatType:   statType,
		}
		if p.RecordType == TypeSingleSeason && cells.Length() > 3 {
			rec.Season = strings.TrimSpace(cells.Eq(3).Text())
		}
		out = append(out, rec)
	})

	if len(out) == 0 {
		return nil, ErrNoRecords
	}
	return out, nil
}

func findTable(doc *goquery.Document, recordType string) *goquery.Selection {
	if recordType == TypeCareer || recordType == TypeActive {
		for _, id := range []string{"#tot", "#nba"} {
			if t := doc.Find("table" + id).First(); t.Length() > 0 {
				return t
			}
		}
		return doc.Find("table").First()
	}
	if t := doc.Find(`table[id^="stats_"]`).First(); t.Length() > 0 {
		return t
	}
	return doc.Find("table.stats_table").First()
}

func parseValue(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// StatType derives the stat from a leaders URL: leaders/pts_career.html is
// "pts".
func StatType(url string) string {
	_, stat, ok := strings.Cut(url, "leaders/")
	if !ok {
		return ""
	}
	for _, suffix := range []string{"_season", "_career", "_active"} {
		if i := strings.Index(stat, suffix); i >= 0 {
			return stat[:i]
		}
	}
	return strings.TrimSuffix(stat, ".html")
}

// ToFrame converts records into a frame with Columns.
func ToFrame(recs []Record) *frame.Frame {
	f := frame.New(Columns...)
	for _, r := range recs {
		_ = f.Append(r.Rank, r.Player, r.Value, r.Season, r.RecordType, r.StatType)
	}
	return f
}

package etl

import (
	"strings"
	"time"

	"github.com/okian/wolfwise/internal/adapters/reference"
	"github.com/okian/wolfwise/internal/config"
	"github.com/okian/wolfwise/internal/domain/season"
)

// Settings are the collector knobs taken from configuration.
//
// Season is the configured label. When it is empty the season follows the
// calendar through Now; see CurrentSeason.
type Settings struct {
	TeamTricode    string
	TeamID         int
	Season         string
	Now            func() time.Time
	SeasonType     string
	LineupSizes    []int
	RecordsPages   []reference.Page
	RecordsDelayLo time.Duration
	RecordsDelayHi time.Duration
	DebugDir       string
}

// SettingsFrom resolves configuration into collector settings. A configured
// season must be a valid label.
func SettingsFrom(cfg *config.Config, now func() time.Time) (Settings, error) {
	if now == nil {
		now = time.Now
	}
	if _, err := season.Resolve(cfg.Season, now()); err != nil {
		return Settings{}, err
	}
	pages := make([]reference.Page, 0, len(cfg.RecordsPages))
	for _, p := range cfg.RecordsPages {
		url := p.URL
		if strings.HasPrefix(url, "/") {
			url = strings.TrimRight(cfg.ReferenceBaseURL, "/") + url
		}
		pages = append(pages, reference.Page{RecordType: p.RecordType, URL: url})
	}
	lo, hi := cfg.RecordsDelay()
	return Settings{
		TeamTricode:    strings.ToUpper(cfg.TeamTricode),
		TeamID:         cfg.TeamID,
		Season:         cfg.Season,
		Now:            now,
		SeasonType:     cfg.SeasonType,
		LineupSizes:    append([]int(nil), cfg.LineupSizes...),
		RecordsPages:   pages,
		RecordsDelayLo: lo,
		RecordsDelayHi: hi,
		DebugDir:       cfg.DebugDir,
	}, nil
}

// CurrentSeason returns the configured season, or the one in progress now
// when none is configured. Collectors call it once per run.
func (s Settings) CurrentSeason() string {
	if s.Season != "" {
		return s.Season
	}
	return season.Current(s.clock()())
}

func (s Settings) clock() func() time.Time {
	if s.Now != nil {
		return s.Now
	}
	return time.Now
}

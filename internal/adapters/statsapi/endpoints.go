package statsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/wolfwise/internal/domain/frame"
)

// Common parameter values.
const (
	SeasonTypeRegular  = "Regular Season"
	SeasonTypePlayoffs = "Playoffs"

	MeasureBase     = "Base"
	MeasureAdvanced = "Advanced"

	PerModeTotals  = "Totals"
	PerModePerGame = "PerGame"

	leagueNBA = "00"
)

// blank lists parameters the API requires to be present even when empty.
func blank(v url.Values, keys ...string) {
	for _, k := range keys {
		if _, ok := v[k]; !ok {
			v.Set(k, "")
		}
	}
}

func teamID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// LineupsQuery parameterises leaguedashlineups.
type LineupsQuery struct {
	GroupQuantity int
	TeamID        int
	Season        string
	SeasonType    string
	MeasureType   string
	PerMode       string
}

func (q LineupsQuery) values() url.Values {
	v := url.Values{}
	v.Set("GroupQuantity", strconv.Itoa(q.GroupQuantity))
	v.Set("TeamID", teamID(q.TeamID))
	v.Set("Season", q.Season)
	v.Set("SeasonType", orDefault(q.SeasonType, SeasonTypeRegular))
	v.Set("MeasureType", orDefault(q.MeasureType, MeasureBase))
	v.Set("PerMode", orDefault(q.PerMode, PerModeTotals))
	v.Set("LastNGames", "0")
	v.Set("LeagueID", leagueNBA)
	v.Set("Month", "0")
	v.Set("OpponentTeamID", "0")
	v.Set("PORound", "0")
	v.Set("PaceAdjust", "N")
	v.Set("Period", "0")
	v.Set("PlusMinus", "N")
	v.Set("Rank", "N")
	blank(v, "Conference", "DateFrom", "DateTo", "Division", "GameSegment", "Location",
		"Outcome", "SeasonSegment", "ShotClockRange", "VsConference", "VsDivision")
	return v
}

// LeagueDashLineups returns lineup totals for groups of GroupQuantity players.
func (c *Client) LeagueDashLineups(ctx context.Context, q LineupsQuery) (*frame.Frame, error) {
	if q.GroupQuantity < 2 || q.GroupQuantity > 5 {
		return nil, fmt.Errorf("leaguedashlineups: group quantity %d out of range", q.GroupQuantity)
	}
	return c.frame(ctx, "leaguedashlineups", q.values())
}

// PlayerStatsQuery parameterises leaguedashplayerstats. TeamID 0 means every
// team; LastNGames 0 means the full season.
type PlayerStatsQuery struct {
	Season      string
	SeasonType  string
	MeasureType string
	PerMode     string
	LastNGames  int
	TeamID      int
}

func (q PlayerStatsQuery) values() url.Values {
	v := url.Values{}
	v.Set("Season", q.Season)
	v.Set("SeasonType", orDefault(q.SeasonType, SeasonTypeRegular))
	v.Set("MeasureType", orDefault(q.MeasureType, MeasureBase))
	v.Set("PerMode", orDefault(q.PerMode, PerModeTotals))
	v.Set("LastNGames", strconv.Itoa(q.LastNGames))
	v.Set("TeamID", teamID(q.TeamID))
	v.Set("LeagueID", leagueNBA)
	v.Set("Month", "0")
	v.Set("OpponentTeamID", "0")
	v.Set("PORound", "0")
	v.Set("PaceAdjust", "N")
	v.Set("Period", "0")
	v.Set("PlusMinus", "N")
	v.Set("Rank", "N")
	blank(v, "College", "Conference", "Country", "DateFrom", "DateTo", "Division", "DraftPick",
		"DraftYear", "GameScope", "GameSegment", "Height", "Location", "Outcome",
		"PlayerExperience", "PlayerPosition", "SeasonSegment", "ShotClockRange", "StarterBench",
		"TwoWay", "VsConference", "VsDivision", "Weight")
	return v
}

// LeagueDashPlayerStats returns one row per player.
func (c *Client) LeagueDashPlayerStats(ctx context.Context, q PlayerStatsQuery) (*frame.Frame, error) {
	return c.frame(ctx, "leaguedashplayerstats", q.values())
}

// HustleQuery parameterises leaguehustlestatsplayer.
type HustleQuery struct {
	Season     string
	SeasonType string
	PerMode    string
	TeamID     int
}

func (q HustleQuery) values() url.Values {
	v := url.Values{}
	v.Set("Season", q.Season)
	v.Set("SeasonType", orDefault(q.SeasonType, SeasonTypeRegular))
	v.Set("PerMode", orDefault(q.PerMode, PerModeTotals))
	v.Set("TeamID", teamID(q.TeamID))
	v.Set("LeagueID", leagueNBA)
	v.Set("Month", "0")
	v.Set("OpponentTeamID", "0")
	v.Set("PORound", "0")
	blank(v, "College", "Conference", "Country", "DateFrom", "DateTo", "Division", "DraftPick",
		"DraftYear", "Height", "Location", "Outcome", "PlayerExperience", "PlayerPosition",
		"SeasonSegment", "VsConference", "VsDivision", "Weight")
	return v
}

// LeagueHustleStatsPlayer returns hustle stats per player.
func (c *Client) LeagueHustleStatsPlayer(ctx context.Context, q HustleQuery) (*frame.Frame, error) {
	return c.frame(ctx, "leaguehustlestatsplayer", q.values())
}

// GameFinderQuery parameterises leaguegamefinder in team mode. Empty fields
// are left unfiltered.
type GameFinderQuery struct {
	TeamID     int
	Season     string
	SeasonType string
}

func (q GameFinderQuery) values() url.Values {
	v := url.Values{}
	v.Set("PlayerOrTeam", "T")
	v.Set("LeagueID", leagueNBA)
	v.Set("TeamID", teamID(q.TeamID))
	v.Set("Season", q.Season)
	v.Set("SeasonType", q.SeasonType)
	return v
}

// LeagueGameFinder returns team game rows, most recent first.
func (c *Client) LeagueGameFinder(ctx context.Context, q GameFinderQuery) (*frame.Frame, error) {
	return c.frame(ctx, "leaguegamefinder", q.values())
}

// MostRecentGame returns the id of the latest game row for tricode, or ""
// when the finder has none.
func (c *Client) MostRecentGame(ctx context.Context, tricode string) (string, error) {
	f, err := c.LeagueGameFinder(ctx, GameFinderQuery{})
	if err != nil {
		return "", err
	}
	for i := 0; i < f.Len(); i++ {
		if strings.EqualFold(frame.String(f.Value(i, "TEAM_ABBREVIATION")), tricode) {
			return frame.String(f.Value(i, "GAME_ID")), nil
		}
	}
	return "", nil
}

// TeamGameLogsQuery parameterises teamgamelogs.
type TeamGameLogsQuery struct {
	TeamID     int
	Season     string
	SeasonType string
}

func (q TeamGameLogsQuery) values() url.Values {
	v := url.Values{}
	v.Set("TeamID", teamID(q.TeamID))
	v.Set("Season", q.Season)
	v.Set("SeasonType", orDefault(q.SeasonType, SeasonTypeRegular))
	v.Set("LeagueID", leagueNBA)
	blank(v, "DateFrom", "DateTo", "GameSegment", "LastNGames", "Location", "MeasureType",
		"Month", "OppTeamID", "Outcome", "PORound", "PerMode", "Period", "PlayerID",
		"SeasonSegment", "ShotClockRange", "VsConference", "VsDivision")
	return v
}

// TeamGameLogs returns one row per game the team played.
func (c *Client) TeamGameLogs(ctx context.Context, q TeamGameLogsQuery) (*frame.Frame, error) {
	return c.frame(ctx, "teamgamelogs", q.values())
}

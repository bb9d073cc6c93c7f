package nbalive

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexBool decodes true/false, 1/0 and the strings "1"/"0"/"true"/"false".
// The boxscore feed delivers the starter flag as the string "1".
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	*b = FlexBool(s == "1" || s == "true")
	return nil
}

// FlexInt decodes numbers and numeric strings; anything else is zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*n = FlexInt(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*n = FlexInt(int(f))
		return nil
	}
	*n = 0
	return nil
}

// ID is a numeric identifier kept as its decimal string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*id = ""
		return nil //nolint:nilerr // null and other shapes mean "no id"
	}
	*id = ID(s)
	return nil
}

// Scoreboard is todaysScoreboard_00.json.
type Scoreboard struct {
	Scoreboard struct {
		GameDate string           `json:"gameDate"`
		Games    []ScoreboardGame `json:"games"`
	} `json:"scoreboard"`
}

// ScoreboardGame is one game on the scoreboard.
type ScoreboardGame struct {
	GameID         string `json:"gameId"`
	GameStatus     int    `json:"gameStatus"`
	GameStatusText string `json:"gameStatusText"`
	HomeTeam       struct {
		TeamTricode string `json:"teamTricode"`
	} `json:"homeTeam"`
	AwayTeam struct {
		TeamTricode string `json:"teamTricode"`
	} `json:"awayTeam"`
}

// Involves reports whether tricode plays in the game.
func (g ScoreboardGame) Involves(tricode string) bool {
	return strings.EqualFold(g.HomeTeam.TeamTricode, tricode) || strings.EqualFold(g.AwayTeam.TeamTricode, tricode)
}

// Boxscore is boxscore_{gameId}.json.
type Boxscore struct {
	Game BoxscoreGame `json:"game"`
}

// BoxscoreGame is the game object of a boxscore.
type BoxscoreGame struct {
	GameID         string   `json:"gameId"`
	GameStatus     int      `json:"gameStatus"`
	GameStatusText string   `json:"gameStatusText"`
	GameClock      string   `json:"gameClock"`
	Period         int      `json:"period"`
	GameTimeUTC    string   `json:"gameTimeUTC"`
	IsEndOfPeriod  FlexBool `json:"isEndOfPeriod"`
	Arena          struct {
		ArenaName string `json:"arenaName"`
		ArenaCity string `json:"arenaCity"`
	} `json:"arena"`
	HomeTeam BoxscoreTeam `json:"homeTeam"`
	AwayTeam BoxscoreTeam `json:"awayTeam"`
}

// BoxscoreTeam is one side of a boxscore.
type BoxscoreTeam struct {
	TeamID      ID               `json:"teamId"`
	TeamTricode string           `json:"teamTricode"`
	Score       FlexInt          `json:"score"`
	Players     []BoxscorePlayer `json:"players"`
}

// BoxscorePlayer is a rostered player with game totals.
type BoxscorePlayer struct {
	PersonID   ID         `json:"personId"`
	FirstName  string     `json:"firstName"`
	FamilyName string     `json:"familyName"`
	Starter    FlexBool   `json:"starter"`
	Status     string     `json:"status"`
	Statistics Statistics `json:"statistics"`
}

// Statistics are a player's game totals.
type Statistics struct {
	Points                 FlexInt `json:"points"`
	ReboundsTotal          FlexInt `json:"reboundsTotal"`
	Assists                FlexInt `json:"assists"`
	Steals                 FlexInt `json:"steals"`
	Turnovers              FlexInt `json:"turnovers"`
	Blocks                 FlexInt `json:"blocks"`
	FieldGoalsMade         FlexInt `json:"fieldGoalsMade"`
	FieldGoalsAttempted    FlexInt `json:"fieldGoalsAttempted"`
	ThreePointersMade      FlexInt `json:"threePointersMade"`
	ThreePointersAttempted FlexInt `json:"threePointersAttempted"`
	FreeThrowsMade         FlexInt `json:"freeThrowsMade"`
	FreeThrowsAttempted    FlexInt `json:"freeThrowsAttempted"`
	PlusMinusPoints        float64 `json:"plusMinusPoints"`
	MinutesCalculated      string  `json:"minutesCalculated"`
	FoulsPersonal          FlexInt `json:"foulsPersonal"`
}

// PlayByPlay is playbyplay_{gameId}.json.
type PlayByPlay struct {
	Game struct {
		GameID  string   `json:"gameId"`
		Actions []Action `json:"actions"`
	} `json:"game"`
}

// Action is one play-by-play action.
type Action struct {
	ActionNumber  int      `json:"actionNumber"`
	Clock         string   `json:"clock"`
	Period        int      `json:"period"`
	TeamTricode   string   `json:"teamTricode"`
	PersonID      ID       `json:"personId"`
	PlayerNameI   string   `json:"playerNameI"`
	ActionType    string   `json:"actionType"`
	SubType       string   `json:"subType"`
	Qualifiers    []string `json:"qualifiers"`
	Description   string   `json:"description"`
	ScoreHome     FlexInt  `json:"scoreHome"`
	ScoreAway     FlexInt  `json:"scoreAway"`
	IsScoreChange FlexBool `json:"isScoreChange"`
	ScoreMargin   FlexInt  `json:"scoreMargin"`
}

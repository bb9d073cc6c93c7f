// Package nbalive reads the NBA live data CDN: today's scoreboard and the
// per-game boxscore and play-by-play feeds.
package nbalive

import (
	"context"
	"fmt"
	"strings"
)

// DefaultBaseURL is the live data CDN root.
const DefaultBaseURL = "https://cdn.nba.com/static/json/liveData"

// Getter is the subset of fetch.Client the live client needs.
type Getter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Client reads live game feeds.
type Client struct {
	baseURL string
	get     Getter
}

// New creates a live CDN client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, get Getter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), get: get}
}

// Scoreboard fetches today's scoreboard.
func (c *Client) Scoreboard(ctx context.Context) (*Scoreboard, error) {
	var sb Scoreboard
	if err := c.get.GetJSON(ctx, c.baseURL+"/scoreboard/todaysScoreboard_00.json", &sb); err != nil {
		return nil, fmt.Errorf("scoreboard: %w", err)
	}
	return &sb, nil
}

// Boxscore fetches a game's boxscore.
func (c *Client) Boxscore(ctx context.Context, gameID string) (*Boxscore, error) {
	var box Boxscore
	url := fmt.Sprintf("%s/boxscore/boxscore_%s.json", c.baseURL, gameID)
	if err := c.get.GetJSON(ctx, url, &box); err != nil {
		return nil, fmt.Errorf("boxscore %s: %w", gameID, err)
	}
	if box.Game.GameID == "" {
		box.Game.GameID = gameID
	}
	return &box, nil
}

// PlayByPlay fetches a game's actions.
func (c *Client) PlayByPlay(ctx context.Context, gameID string) (*PlayByPlay, error) {
	var pbp PlayByPlay
	url := fmt.Sprintf("%s/playbyplay/playbyplay_%s.json", c.baseURL, gameID)
	if err := c.get.GetJSON(ctx, url, &pbp); err != nil {
		return nil, fmt.Errorf("play-by-play %s: %w", gameID, err)
	}
	return &pbp, nil
}

// TodaysGame returns the id of today's game involving tricode, or "" when the
// team is not playing.
func (c *Client) TodaysGame(ctx context.Context, tricode string) (string, error) {
	sb, err := c.Scoreboard(ctx)
	if err != nil {
		return "", err
	}
	for _, g := range sb.Scoreboard.Games {
		if g.Involves(tricode) {
			return g.GameID, nil
		}
	}
	return "", nil
}

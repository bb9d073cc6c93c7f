// Package statsapi reads stats.nba.com endpoints and turns their resultSets
// into frames.
package statsapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/wolfwise/internal/adapters/fetch"
	"github.com/okian/wolfwise/internal/domain/frame"
)

// DefaultBaseURL is the stats API root.
const DefaultBaseURL = "https://stats.nba.com/stats"

// BrowserUserAgent is sent by default; the API drops requests from unknown
// agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FetchOptions returns the headers the stats API requires, for fetch.New.
func FetchOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithUserAgent(BrowserUserAgent),
		fetch.WithHeader("Referer", "https://www.nba.com/"),
		fetch.WithHeader("Origin", "https://www.nba.com"),
		fetch.WithHeader("x-nba-stats-origin", "stats"),
		fetch.WithHeader("x-nba-stats-token", "true"),
	}
}

// Getter is the subset of fetch.Client the stats client needs.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client calls stats endpoints.
type Client struct {
	baseURL string
	get     Getter
}

// New creates a stats client. An empty baseURL uses DefaultBaseURL.
func New(baseURL string, get Getter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), get: get}
}

// Call fetches an endpoint and decodes its response.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	body, err := c.get.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	resp, err := Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	if resp.Resource == "" {
		resp.Resource = endpoint
	}
	return resp, nil
}

// frame calls endpoint and returns its first result set.
func (c *Client) frame(ctx context.Context, endpoint string, params url.Values) (*frame.Frame, error) {
	resp, err := c.Call(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return resp.Frame("")
}

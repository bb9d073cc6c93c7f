// Package fetch is the HTTP GET layer shared by every source: default
// headers, a timeout, retries with randomized exponential backoff, and
// per-source metrics.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/okian/wolfwise/pkg/logger"
	"github.com/okian/wolfwise/pkg/metrics"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultAttempts  = 3
	defaultBaseDelay = 2 * time.Second
	defaultUserAgent = "Mozilla/5.0"
	maxBodyBytes     = 64 << 20
	errorBodyBytes   = 512
)

// Client performs GET requests for one source.
type Client struct {
	source    string
	http      *http.Client
	headers   http.Header
	attempts  uint
	baseDelay time.Duration
	logger    logger.Logger
}

// New creates a client. source labels logs and metrics, e.g. "nba_live".
func New(source string, opts ...Option) *Client {
	c := &Client{
		source:    source,
		http:      &http.Client{Timeout: defaultTimeout},
		headers:   http.Header{},
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		logger:    logger.Nop(),
	}
	c.headers.Set("User-Agent", defaultUserAgent)
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the client's source label.
func (c *Client) Source() string { return c.source }

// Get fetches url and returns the body of a 2xx response. Transport errors,
// 429 and 5xx responses are retried; other statuses fail immediately with a
// *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.baseDelay
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = 8 * c.baseDelay

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return c.once(ctx, url)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.attempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.RecordFetchRetry(c.source)
			c.logger.Warn(ctx, "request failed, retrying",
				logger.String("source", c.source),
				logger.String("url", url),
				logger.Duration("wait", wait),
				logger.Error(err))
		}),
	)
	metrics.RecordFetch(c.source, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: get %s: %w", c.source, url, err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.source, url, err)
	}
	return nil
}

func (c *Client) once(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		serr := &StatusError{Code: resp.StatusCode, Body: string(snippet)}
		if serr.Retryable() {
			return nil, serr
		}
		return nil, backoff.Permanent(serr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Unwrap lets callers match ErrStatus and ErrNotFound with errors.Is.
func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{ErrStatus, ErrNotFound}
	}
	return []error{ErrStatus}
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// IsNotFound reports whether err is a 404 from a source.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

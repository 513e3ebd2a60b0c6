// Package feed reads hole-by-hole scoring from the remote tour feed.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/birdiecount/internal/domain/counter"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/pkg/logger"
	"github.com/okian/birdiecount/pkg/metrics"
)

const (
	// DefaultTimeout bounds a single request when no option overrides it.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the poller to the feed.
	DefaultUserAgent = "Mozilla/5.0 (compatible; BirdieCount/1.0)"

	maxBodyBytes = 4 << 20
)

// Client fetches one event round per call. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	log       logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the prefix for /Event/{e}/Round/{r}.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a Client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		log:       logger.Get().Named("feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the request URL for one event round.
func (c *Client) URL(eventID, roundID string) string {
	return fmt.Sprintf("%s/Event/%s/Round/%s", c.baseURL, url.PathEscape(eventID), url.PathEscape(roundID))
}

// Fetch requests one round and counts it. Every failure is folded into the outcome.
func (c *Client) Fetch(ctx context.Context, eventID, roundID string) model.FetchOutcome {
	start := time.Now()
	players, err := c.FetchPlayers(ctx, eventID, roundID)
	metrics.RecordFetch(err == nil, float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.log.Warn(ctx, "feed fetch failed",
			logger.String("event", eventID),
			logger.String("round", roundID),
			logger.Error(err))
		return model.FetchFailed(err)
	}

	score := counter.Count(players)
	c.log.Debug(ctx, "feed fetched",
		logger.String("event", eventID),
		logger.String("round", roundID),
		logger.Int("players", len(players)),
		logger.Int("birdies", score.Birdies),
		logger.Int("eagles", score.Eagles),
		logger.Duration("took", time.Since(start)))
	return model.Fetched(score)
}

// FetchPlayers requests one round and returns the raw player records.
func (c *Client) FetchPlayers(ctx context.Context, eventID, roundID string) ([]model.PlayerRecord, error) {
	const op = "feed.FetchPlayers"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(eventID, roundID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRequest, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%s: %w: %d", op, ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrRequest, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%s: %w: body exceeds %d bytes", op, ErrDecode, maxBodyBytes)
	}

	return decodePlayers(body)
}

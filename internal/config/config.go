// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
	"github.com/okian/birdiecount/pkg/metrics"
)

// DefaultFeedBaseURL is the public hole-by-hole scoring feed.
const DefaultFeedBaseURL = "https://www.europeantour.com/api/sportdata/HoleByHole"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FeedBaseURL is the prefix for /Event/{e}/Round/{r} requests.
	FeedBaseURL string `koanf:"feed_base_url"`

	// PollIntervalMS is the time between poll cycles.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// RequestTimeoutMS bounds a single feed request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RateLimitRPS and RateLimitBurst bound per-IP API traffic. Zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// CORSOrigins lists allowed browser origins. "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is how often system gauges are sampled.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsLabels are constant labels added to every series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsPrefix is prepended to every metric name.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// Initial board parameters, raw as they would appear in a query string.
	Event  string  `koanf:"event"`
	Round  string  `koanf:"round"`
	Eagle  *string `koanf:"ea"`
	Birdie *string `koanf:"bi"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		FeedBaseURL:      DefaultFeedBaseURL,
		PollIntervalMS:   60_000,
		RequestTimeoutMS: 10_000,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		CORSOrigins:      []string{"*"},
		MetricsEnabled:   true,
		MetricsRefreshMS: 10_000,
	}
}

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// MetricsOptions maps the metrics settings onto manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.MetricsEnabled),
		metrics.WithRefreshInterval(time.Duration(c.MetricsRefreshMS) * time.Millisecond),
		metrics.WithCustomLabels(c.MetricsLabels),
		metrics.WithMetricPrefix(c.MetricsPrefix),
	}
}

// Params resolves the configured board parameters.
func (c *Config) Params() model.Params {
	raw := map[string]string{}
	if c.Event != "" {
		raw[params.KeyEvent] = c.Event
	}
	if c.Round != "" {
		raw[params.KeyRound] = c.Round
	}
	if c.Eagle != nil {
		raw[params.KeyEagle] = *c.Eagle
	}
	if c.Birdie != nil {
		raw[params.KeyBirdie] = *c.Birdie
	}
	return params.Resolve(params.FromMap(raw))
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FeedBaseURL == "":
		return fmt.Errorf("%w: feed_base_url must not be empty", ErrInvalidConfig)
	case c.PollIntervalMS <= 0:
		return fmt.Errorf("%w: poll_interval_ms must be positive", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

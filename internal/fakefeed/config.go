// Package fakefeed serves synthetic hole-by-hole rounds shaped like the
// public tour feed, for local runs and end-to-end tests.
package fakefeed

import "time"

// Config holds generator and server settings.
type Config struct {
	Seed     int64   // Base seed; rounds are deterministic per (seed, event, round)
	Players  int     // Players per round
	Holes    int     // Holes per player
	FailRate float64 // Fraction of requests answered with 500, in [0,1]
}

// Option configures a Config.
type Option func(*Config)

// WithSeed fixes the base seed. Zero picks a time-based seed.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		if seed != 0 {
			c.Seed = seed
		}
	}
}

// WithPlayers sets the number of players per round.
func WithPlayers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Players = n
		}
	}
}

// WithHoles sets the number of holes per player.
func WithHoles(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Holes = n
		}
	}
}

// WithFailRate injects server errors on a fraction of requests.
func WithFailRate(r float64) Option {
	return func(c *Config) {
		if r >= 0 && r <= 1 {
			c.FailRate = r
		}
	}
}

// NewConfig returns a Config with defaults applied.
func NewConfig(opts ...Option) Config {
	c := Config{
		Seed:    time.Now().UnixNano(),
		Players: defaultPlayers,
		Holes:   defaultHoles,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Package service hosts the poll scheduler: it owns the live session and
// swaps it whenever the board params change.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
	"github.com/okian/birdiecount/pkg/logger"
)

// Service runs one Session at a time for the current params.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	fetcher Fetcher
	now     func() time.Time

	// Configuration
	interval time.Duration
	params   model.Params

	// State
	started   bool
	runCtx    context.Context //nolint:containedctx // lifetime of sessions, not of any request
	runCancel context.CancelFunc
	session   *Session
	retiring  sync.WaitGroup
	sessions  int
	changedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the feed client used by every session.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithInterval sets the poll cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithParams sets the params of the first session.
func WithParams(p model.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		fetcher:  noFetcher,
		now:      time.Now,
		interval: DefaultInterval,
		logger:   logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the first session. Sessions live until Stop or until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.started = true
	s.session = s.startSessionLocked(s.params)

	s.logger.Info(ctx, "score service started",
		logger.Duration("interval", s.interval),
		logger.String("event", s.params.EventID),
		logger.String("round", s.params.RoundID))
	return nil
}

// Stop tears down the live session and waits for every cycle to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping score service...")

	current := s.session
	s.session = nil
	s.started = false
	if current != nil {
		current.Stop()
	}
	s.runCancel()
	s.mu.Unlock()

	if current != nil {
		current.Wait()
	}
	s.retiring.Wait()
	s.logger.Info(context.Background(), "score service stopped")
}

// Apply switches to p. A new session starts only when p differs from the
// current params; the return value reports whether that happened.
func (s *Service) Apply(ctx context.Context, p model.Params) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Equal(s.params) {
		return false
	}

	s.logger.Info(ctx, "params changed",
		logger.String("from", params.Encode(s.params).Encode()),
		logger.String("to", params.Encode(p).Encode()))
	s.params = p
	s.changedAt = s.now()

	if !s.started {
		return true
	}

	if old := s.session; old != nil {
		old.Stop()
		s.retiring.Add(1)
		go func() {
			defer s.retiring.Done()
			old.Wait()
		}()
	}
	s.session = s.startSessionLocked(p)
	return true
}

// State returns the published state of the live session, or Idle when none runs.
func (s *Service) State() model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return model.Idle(s.now())
	}
	return s.session.State()
}

// Params returns the current params.
func (s *Service) Params() model.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"interval":         s.interval.String(),
		"sessions_started": s.sessions,
		"polling":          s.params.HasEventRound(),
		"params":           s.params,
	}
	if !s.changedAt.IsZero() {
		stats["params_changed_at"] = s.changedAt
	}
	if s.session != nil {
		st := s.session.State()
		stats["session_id"] = s.session.ID()
		stats["state"] = st.Kind.String()
		stats["updated_at"] = st.UpdatedAt
	}
	return stats
}

func (s *Service) startSessionLocked(p model.Params) *Session {
	s.sessions++
	return StartSession(s.runCtx, p,
		WithSessionFetcher(s.fetcher),
		WithSessionInterval(s.interval),
		WithSessionClock(s.now),
		WithSessionLogger(s.logger.Named("session")),
	)
}

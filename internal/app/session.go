package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdiecount/internal/domain/merge"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/pkg/logger"
	"github.com/okian/birdiecount/pkg/metrics"
)

// DefaultInterval is the fixed poll cadence.
const DefaultInterval = 60 * time.Second

// Fetcher retrieves one round and folds every failure into the outcome.
type Fetcher interface {
	Fetch(ctx context.Context, eventID, roundID string) model.FetchOutcome
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, eventID, roundID string) model.FetchOutcome

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, eventID, roundID string) model.FetchOutcome {
	return f(ctx, eventID, roundID)
}

var noFetcher = FetcherFunc(func(context.Context, string, string) model.FetchOutcome {
	return model.FetchFailed(ErrNoFetcher)
})

// Session polls the feed for one fixed set of params. Params never change
// during a session; a change means Stop and a new session.
type Session struct {
	id       string
	params   model.Params
	fetcher  Fetcher
	interval time.Duration
	now      func() time.Time
	log      logger.Logger
	observe  func(model.State)

	mu        sync.Mutex
	state     model.State
	lastReady *model.Score
	stopped   bool

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionFetcher sets the feed client.
func WithSessionFetcher(f Fetcher) SessionOption {
	return func(s *Session) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSessionInterval sets the time between ticks.
func WithSessionInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSessionClock replaces time.Now for published timestamps.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver registers fn to receive every published state. Calls are
// serialized and must not block.
func WithObserver(fn func(model.State)) SessionOption {
	return func(s *Session) {
		s.observe = fn
	}
}

// StartSession begins polling for p. With event and round set it publishes
// Loading, runs one cycle immediately and one per tick. Otherwise it
// publishes a single merge result and starts no timer.
//
// Feed requests run under ctx, not under the session: Stop leaves an
// in-flight request alone and discards its result on arrival.
func StartSession(ctx context.Context, p model.Params, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.NewString(),
		params:   p,
		fetcher:  noFetcher,
		interval: DefaultInterval,
		now:      time.Now,
		log:      logger.Get().Named("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.String("session", s.id))

	metrics.RecordSessionStarted()
	s.log.Info(ctx, "session started",
		logger.String("event", p.EventID),
		logger.String("round", p.RoundID),
		logger.Bool("overrides", p.HasOverrides()),
		logger.Duration("interval", s.interval))

	if !merge.NeedsFetch(p) {
		d := merge.Decide(p, nil)
		s.publish(ctx, d.Rule, d.State(s.now()))
		s.cancel = func() {}
		return s
	}

	s.publish(ctx, merge.RuleAwaitingFetch, model.Loading(nil, s.now()))

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(2) //nolint:mnd // first cycle and tick loop
	go func() {
		defer s.wg.Done()
		s.cycle(ctx)
	}()
	go s.loop(loopCtx, ctx)

	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Params returns the params the session was started with.
func (s *Session) Params() model.Params { return s.params }

// State returns a copy of the current published state.
func (s *Session) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Stop releases the ticker and voids every in-flight result. It is idempotent.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		s.cancel()
		metrics.RecordSessionStopped()
		s.log.Info(context.Background(), "session stopped")
	})
}

// Wait blocks until the tick loop and every cycle have returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) loop(loopCtx, fetchCtx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			if s.isStopped() {
				return
			}
			// Ticks are not gated on the previous cycle finishing.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.beginCycle(fetchCtx)
				s.cycle(fetchCtx)
			}()
		}
	}
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) beginCycle(ctx context.Context) {
	s.mu.Lock()
	last := s.lastReady
	s.mu.Unlock()
	s.publish(ctx, merge.RuleAwaitingFetch, model.Loading(last, s.now()))
}

// cycle runs fetch, count and merge in sequence and publishes the result.
func (s *Session) cycle(ctx context.Context) {
	outcome := s.fetcher.Fetch(ctx, s.params.EventID, s.params.RoundID)
	d := merge.Decide(s.params, &outcome)
	if !outcome.OK() {
		s.log.Debug(ctx, "cycle fetch failed",
			logger.String("rule", string(d.Rule)), logger.Error(outcome.Err()))
	}
	s.publish(ctx, d.Rule, d.State(s.now()))
}

// publish replaces the current state unless the session is stopped.
func (s *Session) publish(ctx context.Context, rule merge.Rule, st model.State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		metrics.RecordDiscardedCycle()
		s.log.Debug(ctx, "discarded result of stopped session", logger.String("state", st.Kind.String()))
		return false
	}

	s.state = st
	switch st.Kind {
	case model.StateReady:
		last := *st.Score
		s.lastReady = &last
	case model.StateError:
		// An error voids the earlier score for later Loading states.
		s.lastReady = nil
	}

	if rule != merge.RuleAwaitingFetch {
		metrics.RecordPollCycle(string(rule))
	}
	shown := st.Displayed()
	metrics.UpdatePublishedScore(shown.Birdies, shown.Eagles)
	metrics.UpdateEngineState(st.Kind.String())

	s.log.Debug(ctx, "state published",
		logger.String("state", st.Kind.String()),
		logger.String("rule", string(rule)),
		logger.Int("birdies", shown.Birdies),
		logger.Int("eagles", shown.Eagles))

	if s.observe != nil {
		s.observe(st.Clone())
	}
	return true
}

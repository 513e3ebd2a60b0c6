package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errFeedDown = errors.New("feed down")

// stubFetcher replays outcomes in order and repeats the last one. When gate
// is set every call after the first `free` calls blocks until gate closes.
type stubFetcher struct {
	mu       sync.Mutex
	outcomes []model.FetchOutcome
	calls    int
	free     int
	gate     chan struct{}
	entered  chan struct{}
}

func newStub(outcomes ...model.FetchOutcome) *stubFetcher {
	return &stubFetcher{outcomes: outcomes, entered: make(chan struct{}, 64)}
}

func (f *stubFetcher) blockAfter(n int) *stubFetcher {
	f.free = n
	f.gate = make(chan struct{})
	return f
}

func (f *stubFetcher) release() { close(f.gate) }

func (f *stubFetcher) Fetch(_ context.Context, _, _ string) model.FetchOutcome {
	f.mu.Lock()
	i := f.calls
	f.calls++
	out := f.outcomes[min(i, len(f.outcomes)-1)]
	gate := f.gate
	blocks := gate != nil && i >= f.free
	f.mu.Unlock()

	select {
	case f.entered <- struct{}{}:
	default:
	}
	if blocks {
		<-gate
	}
	return out
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func success(b, e int) model.FetchOutcome { return model.Fetched(model.NewScore(b, e)) }

func failure() model.FetchOutcome { return model.FetchFailed(errFeedDown) }

func withOverrides(p model.Params, bi, ea int) model.Params {
	p.BirdieOverride = model.IntPtr(bi)
	p.EagleOverride = model.IntPtr(ea)
	return p
}

var round = model.Params{EventID: "2025101", RoundID: "2"}

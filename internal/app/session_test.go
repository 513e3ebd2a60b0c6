package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/birdiecount/internal/app"
	"github.com/okian/birdiecount/internal/domain/merge"
	"github.com/okian/birdiecount/internal/domain/model"
)

func start(p model.Params, f service.Fetcher, opts ...service.SessionOption) *service.Session {
	opts = append([]service.SessionOption{
		service.WithSessionFetcher(f),
		service.WithSessionInterval(time.Hour),
	}, opts...)
	return service.StartSession(context.Background(), p, opts...)
}

func stateIs(s *service.Session, kind model.StateKind) func() bool {
	return func() bool { return s.State().Kind == kind }
}

func TestSessionScenarios(t *testing.T) {
	Convey("Given overrides only", t, func() {
		f := newStub(success(99, 99))
		s := start(withOverrides(model.Params{}, 5, 3), f)
		defer s.Stop()

		Convey("The overrides are published at once without a fetch", func() {
			st := s.State()
			So(st.Kind, ShouldEqual, model.StateReady)
			So(*st.Score, ShouldResemble, model.NewScore(5, 3))
			So(st.Score.TotalDeployed(), ShouldEqual, 11)
			time.Sleep(30 * time.Millisecond)
			So(f.Calls(), ShouldEqual, 0)
		})
	})

	Convey("Given event, round and overrides with a healthy feed", t, func() {
		f := newStub(success(10, 2))
		s := start(withOverrides(round, 1, 1), f)
		defer s.Stop()

		Convey("The fetched counts are added to the overrides", func() {
			So(waitFor(stateIs(s, model.StateReady)), ShouldBeTrue)
			So(*s.State().Score, ShouldResemble, model.NewScore(11, 3))
			So(s.State().Score.TotalDeployed(), ShouldEqual, 17)
		})
	})

	Convey("Given event, round and overrides with a failing feed", t, func() {
		s := start(withOverrides(round, 4, 2), newStub(failure()))
		defer s.Stop()

		Convey("The overrides are the fallback", func() {
			So(waitFor(stateIs(s, model.StateReady)), ShouldBeTrue)
			So(*s.State().Score, ShouldResemble, model.NewScore(4, 2))
		})
	})

	Convey("Given event and round only with a failing feed", t, func() {
		s := start(round, newStub(failure()))
		defer s.Stop()

		Convey("The session reports an error with zero display", func() {
			So(waitFor(stateIs(s, model.StateError)), ShouldBeTrue)
			st := s.State()
			So(st.Message, ShouldEqual, merge.FetchFailedMessage)
			So(st.Score, ShouldBeNil)
			So(st.Displayed(), ShouldResemble, model.Score{})
		})
	})

	Convey("Given no inputs at all", t, func() {
		f := newStub(success(1, 1))
		s := start(model.Params{}, f)
		defer s.Stop()

		Convey("The session is idle and never fetches", func() {
			So(s.State().Kind, ShouldEqual, model.StateIdle)
			time.Sleep(30 * time.Millisecond)
			So(f.Calls(), ShouldEqual, 0)
		})
	})

	Convey("Given a single override with a healthy feed", t, func() {
		p := round
		p.BirdieOverride = model.IntPtr(3)
		s := start(p, newStub(success(2, 2)))
		defer s.Stop()

		Convey("Only the present override is added", func() {
			So(waitFor(stateIs(s, model.StateReady)), ShouldBeTrue)
			So(*s.State().Score, ShouldResemble, model.NewScore(5, 2))
		})
	})
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Given a feed that is still answering", t, func() {
		f := newStub(success(7, 1)).blockAfter(0)
		s := start(round, f)

		Convey("The session is Loading from the start", func() {
			<-f.entered
			st := s.State()
			So(st.Kind, ShouldEqual, model.StateLoading)
			So(st.Score, ShouldBeNil)
			s.Stop()
			f.release()
			s.Wait()
		})

		Convey("A result arriving after Stop is discarded", func() {
			<-f.entered
			s.Stop()
			f.release()
			s.Wait()
			So(s.State().Kind, ShouldEqual, model.StateLoading)
			So(f.Calls(), ShouldEqual, 1)
		})
	})

	Convey("Given a short interval", t, func() {
		f := newStub(success(1, 0))
		s := start(round, f, service.WithSessionInterval(10*time.Millisecond))

		Convey("Cycles repeat on every tick", func() {
			So(waitFor(func() bool { return f.Calls() >= 4 }), ShouldBeTrue)
			So(s.State().Kind, ShouldBeIn, []model.StateKind{model.StateLoading, model.StateReady})
		})

		Convey("Stop ends the ticking", func() {
			s.Stop()
			s.Wait()
			calls := f.Calls()
			time.Sleep(50 * time.Millisecond)
			So(f.Calls(), ShouldEqual, calls)
		})

		Reset(func() {
			s.Stop()
			s.Wait()
		})
	})

	Convey("Given a Ready cycle followed by a slow one", t, func() {
		f := newStub(success(6, 2)).blockAfter(1)
		s := start(round, f, service.WithSessionInterval(20*time.Millisecond))
		defer func() {
			s.Stop()
			f.release()
			s.Wait()
		}()

		Convey("Loading keeps the last Ready score", func() {
			var st model.State
			So(waitFor(func() bool {
				st = s.State()
				return f.Calls() >= 2 && st.Kind == model.StateLoading && st.Score != nil
			}), ShouldBeTrue)
			So(*st.Score, ShouldResemble, model.NewScore(6, 2))
			So(st.Displayed(), ShouldResemble, model.NewScore(6, 2))
		})
	})

	Convey("Given a Ready cycle followed by a failure", t, func() {
		f := newStub(success(6, 2), failure())
		s := start(round, f, service.WithSessionInterval(10*time.Millisecond))
		defer func() {
			s.Stop()
			s.Wait()
		}()

		Convey("The error does not retain the earlier score", func() {
			var st model.State
			So(waitFor(func() bool {
				st = s.State()
				return st.Kind == model.StateError
			}), ShouldBeTrue)
			So(st.Score, ShouldBeNil)
			So(st.Displayed(), ShouldResemble, model.Score{})
		})
	})

	Convey("Given Ready, then Error, then a slow cycle", t, func() {
		f := newStub(success(6, 2), failure(), success(1, 1)).blockAfter(2)
		s := start(round, f, service.WithSessionInterval(20*time.Millisecond))
		defer func() {
			s.Stop()
			f.release()
			s.Wait()
		}()

		Convey("Loading after the error shows no earlier score", func() {
			var st model.State
			So(waitFor(func() bool {
				st = s.State()
				return f.Calls() >= 3 && st.Kind == model.StateLoading
			}), ShouldBeTrue)
			So(st.Score, ShouldBeNil)
			So(st.Displayed(), ShouldResemble, model.Score{})
		})
	})

	Convey("Given a tight interval stopped mid-flight", t, func() {
		Convey("No fetch starts once Stop and Wait have returned", func() {
			for i := 0; i < 25; i++ {
				f := newStub(success(1, 0))
				s := start(round, f, service.WithSessionInterval(time.Millisecond))
				time.Sleep(3 * time.Millisecond)
				s.Stop()
				s.Wait()
				calls := f.Calls()
				time.Sleep(5 * time.Millisecond)
				So(f.Calls(), ShouldEqual, calls)
			}
		})
	})

	Convey("Given an observer", t, func() {
		var mu sync.Mutex
		var kinds []model.StateKind
		observe := func(st model.State) {
			mu.Lock()
			defer mu.Unlock()
			kinds = append(kinds, st.Kind)
		}
		s := start(round, newStub(success(1, 1)), service.WithObserver(observe))
		defer s.Stop()

		Convey("It sees Loading then Ready", func() {
			So(waitFor(stateIs(s, model.StateReady)), ShouldBeTrue)
			mu.Lock()
			defer mu.Unlock()
			So(kinds, ShouldResemble, []model.StateKind{model.StateLoading, model.StateReady})
		})
	})

	Convey("Stop is idempotent and timestamps follow the clock", t, func() {
		at := time.Date(2025, 7, 3, 12, 0, 0, 0, time.UTC)
		s := start(model.Params{}, newStub(success(0, 0)), service.WithSessionClock(func() time.Time { return at }))
		So(s.ID(), ShouldNotBeEmpty)
		So(s.State().UpdatedAt, ShouldEqual, at)
		So(func() { s.Stop(); s.Stop(); s.Wait() }, ShouldNotPanic)
	})
}

package merge_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/birdiecount/internal/domain/merge"
	"github.com/okian/birdiecount/internal/domain/model"
	"github.com/okian/birdiecount/internal/domain/params"
	. "github.com/smartystreets/goconvey/convey"
)

var errFeedDown = errors.New("feed down")

func fetched(b, e int) *model.FetchOutcome {
	o := model.Fetched(model.NewScore(b, e))
	return &o
}

func failed() *model.FetchOutcome {
	o := model.FetchFailed(errFeedDown)
	return &o
}

func TestDecide(t *testing.T) {
	Convey("Given overrides ea=2 bi=3 and no event/round", t, func() {
		p := model.Params{EagleOverride: model.IntPtr(2), BirdieOverride: model.IntPtr(3)}

		Convey("Then no fetch is needed", func() {
			So(merge.NeedsFetch(p), ShouldBeFalse)
		})

		Convey("Then the overrides are published directly", func() {
			d := merge.Decide(p, nil)
			So(d.Rule, ShouldEqual, merge.RuleOverridesOnly)
			So(d.Kind, ShouldEqual, model.StateReady)
			So(*d.Score, ShouldResemble, model.Score{Birdies: 3, Eagles: 2})
		})
	})

	Convey("Given event 2025134 round 1 and no overrides", t, func() {
		p := model.Params{EventID: "2025134", RoundID: "1"}

		Convey("Then a fetch is needed", func() {
			So(merge.NeedsFetch(p), ShouldBeTrue)
		})

		Convey("When the fetch counts five of each", func() {
			d := merge.Decide(p, fetched(5, 5))

			Convey("Then the fetched counts are published", func() {
				So(d.Rule, ShouldEqual, merge.RuleFetchedPlusBaseline)
				So(*d.Score, ShouldResemble, model.Score{Birdies: 5, Eagles: 5})
				So(d.Score.TotalDeployed(), ShouldEqual, 15)
			})

			Convey("And deciding twice gives the same score", func() {
				again := merge.Decide(p, fetched(5, 5))
				So(*again.Score, ShouldResemble, *d.Score)
			})
		})

		Convey("When the fetch fails", func() {
			d := merge.Decide(p, failed())

			Convey("Then the engine enters the error state without a score", func() {
				So(d.Rule, ShouldEqual, merge.RuleFetchFailed)
				So(d.Kind, ShouldEqual, model.StateError)
				So(d.Score, ShouldBeNil)
				So(d.Message, ShouldEqual, merge.FetchFailedMessage)
			})
		})

		Convey("When no outcome is available yet", func() {
			d := merge.Decide(p, nil)

			Convey("Then the state is loading", func() {
				So(d.Kind, ShouldEqual, model.StateLoading)
			})
		})
	})

	Convey("Given event/round plus overrides ea=1 bi=1", t, func() {
		p := model.Params{EventID: "2025134", RoundID: "1", EagleOverride: model.IntPtr(1), BirdieOverride: model.IntPtr(1)}

		Convey("When the fetch counts five of each", func() {
			d := merge.Decide(p, fetched(5, 5))

			Convey("Then overrides are added as a baseline", func() {
				So(*d.Score, ShouldResemble, model.Score{Birdies: 6, Eagles: 6})
			})
		})
	})

	Convey("Given event/round plus overrides ea=4 bi=7", t, func() {
		p := model.Params{EventID: "2025134", RoundID: "1", EagleOverride: model.IntPtr(4), BirdieOverride: model.IntPtr(7)}

		Convey("When the fetch fails", func() {
			d := merge.Decide(p, failed())

			Convey("Then the raw overrides are the fallback", func() {
				So(d.Rule, ShouldEqual, merge.RuleFallbackOverrides)
				So(d.Kind, ShouldEqual, model.StateReady)
				So(*d.Score, ShouldResemble, model.Score{Birdies: 7, Eagles: 4})
			})
		})
	})

	Convey("Given event/round with only a birdie override", t, func() {
		p := model.Params{EventID: "e", RoundID: "r", BirdieOverride: model.IntPtr(2)}

		Convey("When the fetch succeeds", func() {
			d := merge.Decide(p, fetched(1, 1))

			Convey("Then only the present override is added", func() {
				So(*d.Score, ShouldResemble, model.Score{Birdies: 3, Eagles: 1})
			})
		})

		Convey("When the fetch fails", func() {
			d := merge.Decide(p, failed())

			Convey("Then there is no fallback", func() {
				So(d.Kind, ShouldEqual, model.StateError)
			})
		})
	})

	Convey("Given no inputs at all", t, func() {
		d := merge.Decide(model.Params{}, nil)

		Convey("Then the engine stays idle", func() {
			So(d.Rule, ShouldEqual, merge.RuleIdle)
			So(d.Kind, ShouldEqual, model.StateIdle)
			So(d.Score, ShouldBeNil)
		})
	})

	Convey("Given a single override and no event/round", t, func() {
		d := merge.Decide(model.Params{EagleOverride: model.IntPtr(9)}, nil)

		Convey("Then the engine stays idle", func() {
			So(d.Kind, ShouldEqual, model.StateIdle)
		})
	})
}

func TestDecideLargeOverride(t *testing.T) {
	Convey("Given the largest birdie override and a fetched birdie", t, func() {
		p := params.Resolve(params.FromMap(map[string]string{
			"event": "2025134", "round": "1", "bi": "9223372036854775807",
		}))
		d := merge.Decide(p, fetched(1, 0))

		Convey("Then the sum is published instead of wrapping to zero", func() {
			So(d.Kind, ShouldEqual, model.StateReady)
			So(d.Score.Birdies, ShouldEqual, params.MaxOverride+1)
			So(d.Score.TotalDeployed(), ShouldEqual, params.MaxOverride+1)
		})
	})
}

func TestDecisionState(t *testing.T) {
	now := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

	Convey("Given decisions", t, func() {
		ready := merge.Decide(model.Params{EagleOverride: model.IntPtr(1), BirdieOverride: model.IntPtr(1)}, nil).State(now)
		So(ready.Kind, ShouldEqual, model.StateReady)
		So(ready.UpdatedAt, ShouldEqual, now)
		So(ready.Score.TotalDeployed(), ShouldEqual, 3)

		errState := merge.Decide(model.Params{EventID: "e", RoundID: "r"}, failed()).State(now)
		So(errState.Kind, ShouldEqual, model.StateError)
		So(errState.Score, ShouldBeNil)

		So(merge.Decide(model.Params{}, nil).State(now).Kind, ShouldEqual, model.StateIdle)
	})
}

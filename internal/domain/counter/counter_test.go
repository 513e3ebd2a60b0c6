package counter_test

import (
	"math/rand"
	"testing"

	"github.com/okian/birdiecount/internal/domain/counter"
	"github.com/okian/birdiecount/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func holes(classes ...string) []model.HoleRecord {
	out := make([]model.HoleRecord, len(classes))
	for i, c := range classes {
		out[i] = model.HoleRecord{ScoreClass: c}
	}
	return out
}

func TestCount(t *testing.T) {
	Convey("Given five players with one birdie and one eagle each", t, func() {
		players := make([]model.PlayerRecord, 5)
		for i := range players {
			players[i] = model.PlayerRecord{Holes: holes("pa", "bi", "ea", "bo")}
		}

		Convey("Then five of each are counted", func() {
			So(counter.Count(players), ShouldResemble, model.Score{Birdies: 5, Eagles: 5})
		})

		Convey("And counting again yields the same score", func() {
			So(counter.Count(players), ShouldResemble, counter.Count(players))
		})
	})

	Convey("Given unrecognised and missing classes", t, func() {
		players := []model.PlayerRecord{
			{Holes: holes("", "BI", "eagle", "db", "al")},
			{Holes: nil},
			{Holes: holes("bi")},
		}

		Convey("Then only exact codes count", func() {
			So(counter.Count(players), ShouldResemble, model.Score{Birdies: 1})
		})
	})

	Convey("Given no players", t, func() {
		So(counter.Count(nil), ShouldResemble, model.Score{})
	})

	Convey("Given a shuffled field", t, func() {
		classes := []string{"bi", "ea", "pa", "bo", "db", "bi", "bi", "ea", ""}
		rng := rand.New(rand.NewSource(7))
		var players []model.PlayerRecord
		var wantBirdies, wantEagles int
		for i := 0; i < 40; i++ {
			var hs []model.HoleRecord
			for j := 0; j < 18; j++ {
				c := classes[rng.Intn(len(classes))]
				switch c {
				case "bi":
					wantBirdies++
				case "ea":
					wantEagles++
				}
				hs = append(hs, model.HoleRecord{ScoreClass: c})
			}
			players = append(players, model.PlayerRecord{Holes: hs})
		}
		want := model.Score{Birdies: wantBirdies, Eagles: wantEagles}

		Convey("Then traversal order does not change the result", func() {
			So(counter.Count(players), ShouldResemble, want)
			for i := 0; i < 5; i++ {
				rng.Shuffle(len(players), func(a, b int) { players[a], players[b] = players[b], players[a] })
				for _, p := range players {
					rng.Shuffle(len(p.Holes), func(a, b int) { p.Holes[a], p.Holes[b] = p.Holes[b], p.Holes[a] })
				}
				So(counter.Count(players), ShouldResemble, want)
			}
		})
	})
}

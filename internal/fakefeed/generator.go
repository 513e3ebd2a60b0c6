package fakefeed

import (
	"hash/fnv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/okian/birdiecount/internal/domain/model"
)

// Round mirrors the feed document for one event round.
type Round struct {
	EventID string   `json:"EventId"`
	RoundNo string   `json:"RoundNo"`
	Players []Player `json:"Players"`
}

// Player is one card.
type Player struct {
	PlayerID  int    `json:"PlayerId"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Country   string `json:"Country"`
	Holes     []Hole `json:"Holes"`
}

// Hole is one played hole.
type Hole struct {
	HoleNo     int    `json:"HoleNo"`
	Par        int    `json:"Par"`
	Strokes    int    `json:"Strokes"`
	ScoreClass string `json:"ScoreClass"`
}

// Generator builds rounds. It holds no mutable state and is safe for concurrent use.
type Generator struct {
	cfg Config
}

// NewGenerator creates a Generator.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Round generates the round for eventID/roundID. Equal inputs yield equal rounds.
func (g *Generator) Round(eventID, roundID string) Round {
	faker := gofakeit.New(g.roundSeed(eventID, roundID))

	players := make([]Player, g.cfg.Players)
	for i := range players {
		holes := make([]Hole, g.cfg.Holes)
		for h := range holes {
			par := parLayout[h%len(parLayout)]
			diff := strokeDiff(faker.Number(1, percentScale))
			holes[h] = Hole{
				HoleNo:     h + 1,
				Par:        par,
				Strokes:    par + diff,
				ScoreClass: classFor(diff),
			}
		}
		players[i] = Player{
			PlayerID:  faker.Number(10_000, 99_999),
			FirstName: faker.FirstName(),
			LastName:  faker.LastName(),
			Country:   faker.CountryAbr(),
			Holes:     holes,
		}
	}

	return Round{EventID: eventID, RoundNo: roundID, Players: players}
}

// Records converts a round to the records the counter consumes.
func (r Round) Records() []model.PlayerRecord {
	out := make([]model.PlayerRecord, len(r.Players))
	for i, p := range r.Players {
		holes := make([]model.HoleRecord, len(p.Holes))
		for j, h := range p.Holes {
			holes[j] = model.HoleRecord{ScoreClass: h.ScoreClass}
		}
		out[i] = model.PlayerRecord{Holes: holes}
	}
	return out
}

func (g *Generator) roundSeed(eventID, roundID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(eventID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(roundID))
	return h.Sum64() ^ uint64(g.cfg.Seed) //nolint:gosec // seed bits only
}

// strokeDiff maps a 1..100 roll to strokes relative to par.
func strokeDiff(roll int) int {
	switch {
	case roll <= eagleWeight:
		return -2
	case roll <= eagleWeight+birdieWeight:
		return -1
	case roll <= eagleWeight+birdieWeight+parWeight:
		return 0
	case roll <= eagleWeight+birdieWeight+parWeight+bogeyWeight:
		return 1
	default:
		return 2
	}
}

func classFor(diff int) string {
	switch diff {
	case -2:
		return ClassEagle
	case -1:
		return ClassBirdie
	case 0:
		return ClassPar
	case 1:
		return ClassBogey
	default:
		return ClassDoubleBogey
	}
}

package feed

import (
	"encoding/json"
	"fmt"

	"github.com/okian/birdiecount/internal/domain/model"
)

type roundDoc struct {
	Players *[]*playerDoc `json:"Players"`
}

type playerDoc struct {
	Holes *[]*holeDoc `json:"Holes"`
}

type holeDoc struct {
	ScoreClass json.RawMessage `json:"ScoreClass"`
}

// decodePlayers requires a Players array whose every entry has a Holes array.
// A hole whose ScoreClass is missing or not a string keeps an empty class.
func decodePlayers(body []byte) ([]model.PlayerRecord, error) {
	var doc roundDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if doc.Players == nil {
		return nil, fmt.Errorf("%w: missing Players", ErrShape)
	}

	players := make([]model.PlayerRecord, 0, len(*doc.Players))
	for i, p := range *doc.Players {
		if p == nil || p.Holes == nil {
			return nil, fmt.Errorf("%w: player %d has no Holes", ErrShape, i)
		}
		holes := make([]model.HoleRecord, 0, len(*p.Holes))
		for _, h := range *p.Holes {
			holes = append(holes, model.HoleRecord{ScoreClass: scoreClass(h)})
		}
		players = append(players, model.PlayerRecord{Holes: holes})
	}
	return players, nil
}

func scoreClass(h *holeDoc) string {
	if h == nil || len(h.ScoreClass) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(h.ScoreClass, &s); err != nil {
		return ""
	}
	return s
}

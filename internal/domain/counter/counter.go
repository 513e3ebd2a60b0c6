// Package counter tallies birdies and eagles from hole-by-hole records.
package counter

import "github.com/okian/birdiecount/internal/domain/model"

// Count walks every hole of every player and counts birdie and eagle
// classes. Other classes, including empty ones, are ignored.
func Count(players []model.PlayerRecord) model.Score {
	var s model.Score
	for _, p := range players {
		for _, h := range p.Holes {
			switch h.ScoreClass {
			case model.ScoreClassBirdie:
				s.Birdies++
			case model.ScoreClassEagle:
				s.Eagles++
			}
		}
	}
	return s
}

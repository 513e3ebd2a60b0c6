// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
)

// Score class codes published by the hole-by-hole feed.
const (
	ScoreClassBirdie = "bi"
	ScoreClassEagle  = "ea"
)

// tileWidth is the number of digits a display tile shows.
const tileWidth = 3

// Score is the birdie/eagle tally published to the presentation layer.
// Both counts are non-negative.
type Score struct {
	Birdies int `json:"birdies"`
	Eagles  int `json:"eagles"`
}

// NewScore builds a Score, clamping negative inputs to zero.
func NewScore(birdies, eagles int) Score {
	return Score{Birdies: max(birdies, 0), Eagles: max(eagles, 0)}
}

// TotalDeployed is the number of balls deployed: one per birdie, two per eagle.
// It saturates at math.MaxInt.
func (s Score) TotalDeployed() int {
	return satAdd(s.Birdies, satAdd(s.Eagles, s.Eagles))
}

// Add returns the element-wise sum of two scores, saturating at math.MaxInt.
func (s Score) Add(o Score) Score {
	return NewScore(satAdd(s.Birdies, o.Birdies), satAdd(s.Eagles, o.Eagles))
}

// satAdd adds two non-negative counts without wrapping.
func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func (s Score) String() string {
	return fmt.Sprintf("birdies=%d eagles=%d total=%d", s.Birdies, s.Eagles, s.TotalDeployed())
}

// Digits renders n zero-padded to the tile width, e.g. 7 -> "007".
// Values wider than the tiles are returned unpadded.
func Digits(n int) string {
	s := strconv.Itoa(max(n, 0))
	for len(s) < tileWidth {
		s = "0" + s
	}
	return s
}

// HoleRecord is one hole for one player as reported by the feed.
type HoleRecord struct {
	ScoreClass string
}

// PlayerRecord groups the holes the feed reported for a single player.
type PlayerRecord struct {
	Holes []HoleRecord
}

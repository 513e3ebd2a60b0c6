package fakefeed

// Field defaults.
const (
	defaultPlayers = 156
	defaultHoles   = 18
)

// Score class codes as the feed reports them.
const (
	ClassEagle       = "ea"
	ClassBirdie      = "bi"
	ClassPar         = "pa"
	ClassBogey       = "bo"
	ClassDoubleBogey = "db"
)

// Outcome weights out of 100 per hole.
const (
	eagleWeight  = 1
	birdieWeight = 18
	parWeight    = 60
	bogeyWeight  = 17
	percentScale = 100
)

// parLayout is a typical par-72 card, repeated for rounds longer than 18 holes.
var parLayout = []int{4, 4, 3, 5, 4, 4, 3, 4, 5, 4, 4, 3, 5, 4, 4, 3, 4, 5}

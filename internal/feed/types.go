package feed

import (
	"strconv"
	"strings"
	"time"

	"github.com/openbracket/madpool/internal/bracket"
)

// Round indices in the feed response.
const (
	RoundFirstFour    = 0
	RoundFinalFour    = 5
	RoundChampionship = 6
)

// Bracket is the feed's nested tournament payload.
type Bracket struct {
	Rounds []Round `json:"rounds"`
}

// Round carries bracketed games for the regional rounds and a flat game
// list for the Final Four and championship rounds.
type Round struct {
	Bracketed []RegionGames `json:"bracketed"`
	Games     []Game        `json:"games"`
}

type RegionGames struct {
	Bracket struct {
		Name string `json:"name"`
	} `json:"bracket"`
	Games []Game `json:"games"`
}

type TeamRef struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

type Game struct {
	Title      string    `json:"title"`
	Home       TeamRef   `json:"home"`
	Away       TeamRef   `json:"away"`
	HomePoints int       `json:"home_points"`
	AwayPoints int       `json:"away_points"`
	Status     string    `json:"status"`
	Scheduled  time.Time `json:"scheduled"`
}

// Decided reports whether the feed considers the game over.
func (g *Game) Decided() bool {
	return strings.Contains(g.Status, "closed") || strings.Contains(g.Status, "complete")
}

// Number extracts the trailing game number from titles like
// "West Regional - First Round - Game 3".
func (g *Game) Number() int {
	parts := strings.Split(g.Title, "Game ")
	if len(parts) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(strings.Fields(parts[len(parts)-1])[0])
	return n
}

// WinnerAlias returns the alias of the higher scoring team.
func (g *Game) WinnerAlias() string {
	if g.HomePoints > g.AwayPoints {
		return g.Home.Alias
	}
	return g.Away.Alias
}

// regionNames maps feed bracket names to engine region names. The
// mapping is exact; unknown names are rejected.
var regionNames = map[string]bracket.RegionName{
	"West Regional":    bracket.West,
	"Midwest Regional": bracket.Midwest,
	"South Regional":   bracket.South,
	"East Regional":    bracket.East,
}

// RegionName resolves a feed bracket name.
func RegionName(feedName string) (bracket.RegionName, bool) {
	name, ok := regionNames[feedName]
	return name, ok
}

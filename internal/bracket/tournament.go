package bracket

import (
	"fmt"
	"strconv"
	"strings"
)

// Round cursor values for Tournament.CurrentRound.
const (
	RoundSetup        = 0 // first four and region initialization
	RoundFinalFour    = 5 // semifinals
	RoundChampionship = 6
	RoundCompleted    = 7
)

// FinalFour holds the two semifinal matches and the championship.
// Semifinal participants are seeded from the regional champions when the
// tournament advances past round 4; the championship is populated when
// both semifinals are decided.
type FinalFour struct {
	Semifinals   [2]Match `json:"semifinals"`
	Championship Match    `json:"championship"`
	Champion     string   `json:"champion"`
}

// Tournament is the full per-year bracket: four regions, the First Four
// play-in matches, the Final Four and the betting/round state.
type Tournament struct {
	Year         int       `json:"year"`
	Regions      [4]Region `json:"regions"`
	FirstFour    [4]Match  `json:"first_four"`
	FinalFour    FinalFour `json:"final_four"`
	BettingOpen  bool      `json:"betting_open"`
	CurrentRound int       `json:"current_round"`
}

// New creates an empty tournament for a year. Regions are laid out in
// the given traversal order, which also fixes prediction slot order and
// Final Four seeding (order[0] vs order[1], order[2] vs order[3]).
func New(year int, order [4]RegionName) *Tournament {
	t := &Tournament{Year: year, BettingOpen: true}
	for i, name := range order {
		t.Regions[i].Name = name
	}
	return t
}

// Region returns the region with the given name.
func (t *Tournament) Region(name RegionName) (*Region, error) {
	for i := range t.Regions {
		if t.Regions[i].Name == name {
			return &t.Regions[i], nil
		}
	}
	return nil, ErrUnknownRegion
}

// firstFourIndex parses a play-in code of the form FFG1..FFG4.
func firstFourIndex(code string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(code, "FFG"))
	if err != nil || !strings.HasPrefix(code, "FFG") || n < 1 || n > 4 {
		return 0, ErrMatchNotFound
	}
	return n - 1, nil
}

// InitFirstFourMatch seeds a play-in match with its two teams.
func (t *Tournament) InitFirstFourMatch(code, home, away string) error {
	i, err := firstFourIndex(code)
	if err != nil {
		return err
	}
	if t.FirstFour[i].Ready() {
		return ErrAlreadyInitialized
	}
	if home == "" || away == "" || home == away {
		return ErrInvalidTeamCount
	}
	t.FirstFour[i].Home = home
	t.FirstFour[i].Away = away
	return nil
}

// DetermineFirstFourWinner records a play-in result. The winner becomes
// substitutable for the FFG placeholder at region initialization.
func (t *Tournament) DetermineFirstFourWinner(code, winner string, homeScore, awayScore int) error {
	i, err := firstFourIndex(code)
	if err != nil {
		return err
	}
	return t.FirstFour[i].decide(winner, homeScore, awayScore)
}

// InitRegion seeds a region with 16 teams ordered so teams[2i] and
// teams[2i+1] are round 1 opponents. FFG placeholders are resolved to
// the play-in winners; initialization fails while any referenced play-in
// is undecided.
func (t *Tournament) InitRegion(name RegionName, teams [16]string) error {
	region, err := t.Region(name)
	if err != nil {
		return err
	}
	for i, team := range teams {
		if !strings.HasPrefix(team, "FFG") {
			continue
		}
		ff, err := firstFourIndex(team)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidTeamCount, team)
		}
		if !t.FirstFour[ff].Decided() {
			return ErrFirstFourPending
		}
		teams[i] = t.FirstFour[ff].Winner
	}
	return region.init(teams)
}

// DetermineMatchWinner records a regional match result and propagates
// the winner into the next round's slot. For rounds 2 and up the match
// participants must already have been derived from the feeder winners.
func (t *Tournament) DetermineMatchWinner(name RegionName, winner string, round, index, homeScore, awayScore int) error {
	region, err := t.Region(name)
	if err != nil {
		return err
	}
	if round < 1 || round > 4 {
		return ErrMatchNotFound
	}
	return region.decideMatch(winner, round, index, homeScore, awayScore)
}

// DetermineFinalRegionWinner decides the round 4 match and with it the
// regional champion.
func (t *Tournament) DetermineFinalRegionWinner(name RegionName, winner string, homeScore, awayScore int) error {
	return t.DetermineMatchWinner(name, winner, 4, 0, homeScore, awayScore)
}

// DetermineFinalFourWinner records a semifinal result and propagates the
// winner into the championship match.
func (t *Tournament) DetermineFinalFourWinner(index int, winner string, homeScore, awayScore int) error {
	if index < 0 || index >= len(t.FinalFour.Semifinals) {
		return ErrMatchNotFound
	}
	if err := t.FinalFour.Semifinals[index].decide(winner, homeScore, awayScore); err != nil {
		return err
	}
	if index == 0 {
		t.FinalFour.Championship.Home = winner
	} else {
		t.FinalFour.Championship.Away = winner
	}
	return nil
}

// DetermineChampion decides the championship match and sets the
// tournament champion.
func (t *Tournament) DetermineChampion(winner string, homeScore, awayScore int) error {
	if err := t.FinalFour.Championship.decide(winner, homeScore, awayScore); err != nil {
		return err
	}
	t.FinalFour.Champion = winner
	return nil
}

// AdvanceRound moves the round cursor forward once the active round is
// fully decided across the bracket. Advancing past round 4 seats the
// Final Four semifinals from the regional champions.
func (t *Tournament) AdvanceRound() error {
	switch t.CurrentRound {
	case RoundSetup:
		for i := range t.Regions {
			if !t.Regions[i].Initialized() {
				return ErrRoundNotComplete
			}
		}
	case 1, 2, 3, 4:
		for i := range t.Regions {
			if !t.Regions[i].roundDecided(t.CurrentRound) {
				return ErrRoundNotComplete
			}
		}
	case RoundFinalFour:
		for i := range t.FinalFour.Semifinals {
			if !t.FinalFour.Semifinals[i].Decided() {
				return ErrRoundNotComplete
			}
		}
	case RoundChampionship:
		if !t.FinalFour.Championship.Decided() {
			return ErrRoundNotComplete
		}
	default:
		return ErrAlreadyDecided
	}
	t.CurrentRound++
	if t.CurrentRound == RoundFinalFour {
		t.FinalFour.Semifinals[0].Home = t.Regions[0].Champion
		t.FinalFour.Semifinals[0].Away = t.Regions[1].Champion
		t.FinalFour.Semifinals[1].Home = t.Regions[2].Champion
		t.FinalFour.Semifinals[1].Away = t.Regions[3].Champion
	}
	return nil
}

// CloseBets irreversibly closes the betting window.
func (t *Tournament) CloseBets() error {
	if !t.BettingOpen {
		return ErrBetsClosed
	}
	t.BettingOpen = false
	return nil
}

// Completed reports whether the champion is decided and the round cursor
// has advanced past the championship.
func (t *Tournament) Completed() bool {
	return t.FinalFour.Champion != "" && t.CurrentRound >= RoundCompleted
}

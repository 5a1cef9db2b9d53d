package bracket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func regionTeams(prefix string) [16]string {
	var teams [16]string
	for i := range teams {
		teams[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return teams
}

func newTestTournament(t *testing.T) *Tournament {
	t.Helper()
	return New(2024, DefaultRegionOrder)
}

// playRegionRound decides every match of a regional round, home side winning.
func playRegionRound(t *testing.T, tournament *Tournament, name RegionName, round int) {
	t.Helper()
	region, err := tournament.Region(name)
	require.NoError(t, err)
	matches := 8 >> (round - 1)
	for i := 0; i < matches; i++ {
		m, err := region.match(round, i)
		require.NoError(t, err)
		require.True(t, m.Ready(), "round %d match %d should have participants", round, i)
		if round == 4 {
			require.NoError(t, tournament.DetermineFinalRegionWinner(name, m.Home, 80, 70))
		} else {
			require.NoError(t, tournament.DetermineMatchWinner(name, m.Home, round, i, 80, 70))
		}
	}
}

// playFull drives a tournament from empty to completion with the home
// side winning every game.
func playFull(t *testing.T, tournament *Tournament) {
	t.Helper()
	prefixes := []string{"W", "M", "S", "E"}
	for i, name := range DefaultRegionOrder {
		require.NoError(t, tournament.InitRegion(name, regionTeams(prefixes[i])))
	}
	require.NoError(t, tournament.AdvanceRound())
	for round := 1; round <= 4; round++ {
		for _, name := range DefaultRegionOrder {
			playRegionRound(t, tournament, name, round)
		}
		require.NoError(t, tournament.AdvanceRound())
	}
	for i := 0; i < 2; i++ {
		semi := tournament.FinalFour.Semifinals[i]
		require.NoError(t, tournament.DetermineFinalFourWinner(i, semi.Home, 80, 70))
	}
	require.NoError(t, tournament.AdvanceRound())
	require.NoError(t, tournament.DetermineChampion(tournament.FinalFour.Championship.Home, 80, 70))
	require.NoError(t, tournament.AdvanceRound())
}

func TestInitRegion(t *testing.T) {
	tournament := newTestTournament(t)

	err := tournament.InitRegion(West, regionTeams("W"))
	require.NoError(t, err)

	region, err := tournament.Region(West)
	require.NoError(t, err)
	assert.True(t, region.Initialized())
	assert.Equal(t, "W01", region.Round1[0].Home)
	assert.Equal(t, "W02", region.Round1[0].Away)
	assert.Equal(t, "W15", region.Round1[7].Home)
	assert.Equal(t, "W16", region.Round1[7].Away)

	err = tournament.InitRegion(West, regionTeams("W"))
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestInitRegionRejectsDuplicates(t *testing.T) {
	tournament := newTestTournament(t)

	teams := regionTeams("W")
	teams[5] = teams[4]
	err := tournament.InitRegion(West, teams)
	assert.ErrorIs(t, err, ErrInvalidTeamCount)

	teams = regionTeams("W")
	teams[0] = ""
	err = tournament.InitRegion(West, teams)
	assert.ErrorIs(t, err, ErrInvalidTeamCount)
}

func TestDetermineMatchWinner(t *testing.T) {
	tournament := newTestTournament(t)
	require.NoError(t, tournament.InitRegion(West, regionTeams("W")))

	err := tournament.DetermineMatchWinner(West, "W01", 1, 0, 80, 70)
	require.NoError(t, err)

	region, err := tournament.Region(West)
	require.NoError(t, err)
	assert.Equal(t, "W01", region.Round1[0].Winner)
	assert.Equal(t, 80, region.Round1[0].HomeScore)
	assert.Equal(t, 70, region.Round1[0].AwayScore)

	// Winner propagates into the home slot of round 2 match 0; the away
	// slot stays empty until round 1 match 1 is decided.
	assert.Equal(t, "W01", region.Round2[0].Home)
	assert.Empty(t, region.Round2[0].Away)

	// Decisions are immutable.
	err = tournament.DetermineMatchWinner(West, "W01", 1, 0, 80, 70)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	err = tournament.DetermineMatchWinner(West, "W02", 1, 0, 10, 90)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	assert.Equal(t, "W01", region.Round1[0].Winner)
	assert.Equal(t, 80, region.Round1[0].HomeScore)
}

func TestDetermineMatchWinnerValidation(t *testing.T) {
	tournament := newTestTournament(t)
	require.NoError(t, tournament.InitRegion(West, regionTeams("W")))

	err := tournament.DetermineMatchWinner(West, "W99", 1, 0, 80, 70)
	assert.ErrorIs(t, err, ErrUnknownTeam)

	err = tournament.DetermineMatchWinner(West, "W01", 1, 8, 80, 70)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	err = tournament.DetermineMatchWinner(West, "W01", 5, 0, 80, 70)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	err = tournament.DetermineMatchWinner(West, "W01", 2, 0, 80, 70)
	assert.ErrorIs(t, err, ErrRoundNotOpen)

	err = tournament.DetermineMatchWinner("NORTH", "W01", 1, 0, 80, 70)
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestRoundPropagation(t *testing.T) {
	tournament := newTestTournament(t)
	require.NoError(t, tournament.InitRegion(West, regionTeams("W")))

	require.NoError(t, tournament.DetermineMatchWinner(West, "W01", 1, 0, 80, 70))
	require.NoError(t, tournament.DetermineMatchWinner(West, "W04", 1, 1, 60, 75))

	region, err := tournament.Region(West)
	require.NoError(t, err)
	assert.Equal(t, "W01", region.Round2[0].Home)
	assert.Equal(t, "W04", region.Round2[0].Away)

	// Participants of later rounds are derived, never supplied: a
	// round 2 winner from outside the feeder results is rejected.
	err = tournament.DetermineMatchWinner(West, "W02", 2, 0, 80, 70)
	assert.ErrorIs(t, err, ErrUnknownTeam)

	require.NoError(t, tournament.DetermineMatchWinner(West, "W04", 2, 0, 65, 77))
	assert.Equal(t, "W04", region.Round3[0].Home)
}

func TestAdvanceRoundGating(t *testing.T) {
	tournament := newTestTournament(t)

	// Setup round: all regions must be initialized.
	err := tournament.AdvanceRound()
	assert.ErrorIs(t, err, ErrRoundNotComplete)

	prefixes := []string{"W", "M", "S", "E"}
	for i, name := range DefaultRegionOrder {
		require.NoError(t, tournament.InitRegion(name, regionTeams(prefixes[i])))
	}
	require.NoError(t, tournament.AdvanceRound())
	assert.Equal(t, 1, tournament.CurrentRound)

	// Round 1 incomplete in one region.
	for _, name := range DefaultRegionOrder[:3] {
		playRegionRound(t, tournament, name, 1)
	}
	err = tournament.AdvanceRound()
	assert.ErrorIs(t, err, ErrRoundNotComplete)
	assert.Equal(t, 1, tournament.CurrentRound)

	playRegionRound(t, tournament, East, 1)
	require.NoError(t, tournament.AdvanceRound())
	assert.Equal(t, 2, tournament.CurrentRound)
}

func TestFinalFourSeeding(t *testing.T) {
	tournament := newTestTournament(t)
	prefixes := []string{"W", "M", "S", "E"}
	for i, name := range DefaultRegionOrder {
		require.NoError(t, tournament.InitRegion(name, regionTeams(prefixes[i])))
	}
	require.NoError(t, tournament.AdvanceRound())
	for round := 1; round <= 4; round++ {
		for _, name := range DefaultRegionOrder {
			playRegionRound(t, tournament, name, round)
		}
		require.NoError(t, tournament.AdvanceRound())
	}

	assert.Equal(t, RoundFinalFour, tournament.CurrentRound)
	assert.Equal(t, "W01", tournament.FinalFour.Semifinals[0].Home)
	assert.Equal(t, "M01", tournament.FinalFour.Semifinals[0].Away)
	assert.Equal(t, "S01", tournament.FinalFour.Semifinals[1].Home)
	assert.Equal(t, "E01", tournament.FinalFour.Semifinals[1].Away)

	// Championship participants derive from semifinal winners.
	err := tournament.DetermineChampion("W01", 80, 70)
	assert.ErrorIs(t, err, ErrRoundNotOpen)

	require.NoError(t, tournament.DetermineFinalFourWinner(0, "M01", 70, 80))
	require.NoError(t, tournament.DetermineFinalFourWinner(1, "S01", 80, 70))
	assert.Equal(t, "M01", tournament.FinalFour.Championship.Home)
	assert.Equal(t, "S01", tournament.FinalFour.Championship.Away)

	require.NoError(t, tournament.AdvanceRound())
	require.NoError(t, tournament.DetermineChampion("S01", 60, 90))
	assert.Equal(t, "S01", tournament.FinalFour.Champion)
	assert.False(t, tournament.Completed())

	require.NoError(t, tournament.AdvanceRound())
	assert.True(t, tournament.Completed())
}

func TestFullTournament(t *testing.T) {
	tournament := newTestTournament(t)
	playFull(t, tournament)

	assert.True(t, tournament.Completed())
	assert.Equal(t, "W01", tournament.FinalFour.Champion)
	assert.Equal(t, RoundCompleted, tournament.CurrentRound)
}

func TestFirstFour(t *testing.T) {
	tournament := newTestTournament(t)

	require.NoError(t, tournament.InitFirstFourMatch("FFG1", "AAA", "BBB"))
	err := tournament.InitFirstFourMatch("FFG1", "AAA", "BBB")
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	err = tournament.InitFirstFourMatch("FFG9", "CCC", "DDD")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	// Region init is deferred while a referenced play-in is undecided.
	teams := regionTeams("W")
	teams[15] = "FFG1"
	err = tournament.InitRegion(West, teams)
	assert.ErrorIs(t, err, ErrFirstFourPending)

	require.NoError(t, tournament.DetermineFirstFourWinner("FFG1", "BBB", 55, 62))
	err = tournament.DetermineFirstFourWinner("FFG1", "BBB", 55, 62)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	require.NoError(t, tournament.InitRegion(West, teams))
	region, err := tournament.Region(West)
	require.NoError(t, err)
	assert.Equal(t, "BBB", region.Teams[15])
	assert.Equal(t, "BBB", region.Round1[7].Away)
}

func TestCloseBetsIrreversible(t *testing.T) {
	tournament := newTestTournament(t)

	assert.True(t, tournament.BettingOpen)
	require.NoError(t, tournament.CloseBets())
	assert.False(t, tournament.BettingOpen)

	for i := 0; i < 3; i++ {
		err := tournament.CloseBets()
		assert.ErrorIs(t, err, ErrBetsClosed)
		assert.False(t, tournament.BettingOpen)
	}
}

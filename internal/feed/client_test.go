package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/madpool/internal/bracket"
)

const sampleFeed = `{
	"rounds": [
		{
			"bracketed": [
				{
					"bracket": {"name": "First Four"},
					"games": [
						{
							"title": "First Four - Game 1",
							"home": {"alias": "TXSO", "name": "Texas Southern"},
							"away": {"alias": "FDU", "name": "Fairleigh Dickinson"},
							"home_points": 60,
							"away_points": 71,
							"status": "closed"
						}
					]
				}
			]
		},
		{
			"bracketed": [
				{
					"bracket": {"name": "West Regional"},
					"games": [
						{
							"title": "West Regional - First Round - Game 2",
							"home": {"alias": "UCLA", "name": "UCLA"},
							"away": {"alias": "UNC", "name": "North Carolina"},
							"home_points": 0,
							"away_points": 0,
							"status": "scheduled",
							"scheduled": "2024-03-21T17:00:00Z"
						},
						{
							"title": "West Regional - First Round - Game 1",
							"home": {"alias": "GONZ", "name": "Gonzaga"},
							"away": {"alias": "PUR", "name": "Purdue"},
							"home_points": 83,
							"away_points": 79,
							"status": "complete"
						}
					]
				}
			]
		}
	]
}`

func TestClientBracket(t *testing.T) {
	var gotYear string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotYear = r.URL.Query().Get("year")
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	b, err := client.Bracket(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "2024", gotYear)
	require.Len(t, b.Rounds, 2)

	brackets, err := b.RegionalRound(1)
	require.NoError(t, err)
	require.Len(t, brackets, 1)
	assert.Equal(t, "West Regional", brackets[0].Bracket.Name)
	require.Len(t, brackets[0].Games, 2)

	_, err = b.RegionalRound(3)
	assert.Error(t, err)
}

func TestClientBracketErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Bracket(context.Background(), 2024)
	assert.ErrorContains(t, err, "status 502")

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer bad.Close()

	client = NewClient(bad.URL, 5*time.Second)
	_, err = client.Bracket(context.Background(), 2024)
	assert.ErrorContains(t, err, "decode")
}

func TestFlatRoundNestedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	b, err := client.Bracket(context.Background(), 2024)
	require.NoError(t, err)

	// The First Four round has no flat game list; games come from the
	// nested brackets.
	games, err := b.FlatRound(RoundFirstFour)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "FDU", games[0].WinnerAlias())
}

func TestGameHelpers(t *testing.T) {
	g := Game{
		Title:      "West Regional - First Round - Game 3",
		Home:       TeamRef{Alias: "GONZ"},
		Away:       TeamRef{Alias: "PUR"},
		HomePoints: 83,
		AwayPoints: 79,
		Status:     "closed",
	}
	assert.Equal(t, 3, g.Number())
	assert.Equal(t, "GONZ", g.WinnerAlias())
	assert.True(t, g.Decided())

	g.Status = "inprogress"
	assert.False(t, g.Decided())

	g.Title = "National Championship"
	assert.Zero(t, g.Number())
}

func TestRegionName(t *testing.T) {
	name, ok := RegionName("West Regional")
	require.True(t, ok)
	assert.Equal(t, bracket.West, name)

	name, ok = RegionName("Midwest Regional")
	require.True(t, ok)
	assert.Equal(t, bracket.Midwest, name)

	_, ok = RegionName("North Regional")
	assert.False(t, ok)

	_, ok = RegionName("west regional")
	assert.False(t, ok)
}

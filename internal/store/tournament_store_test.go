package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbracket/madpool/internal/bracket"
)

func TestTournamentSaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewTournamentStore(db)
	ctx := context.Background()

	tournament := bracket.New(2024, bracket.DefaultRegionOrder)
	var teams [16]string
	for i := range teams {
		teams[i] = string(rune('A' + i))
	}
	require.NoError(t, tournament.InitRegion(bracket.West, teams))
	require.NoError(t, tournament.DetermineMatchWinner(bracket.West, "A", 1, 0, 80, 70))

	tx := mustTx(t, db)
	require.NoError(t, s.Save(ctx, tx, tournament))
	require.NoError(t, tx.Commit())

	got, err := s.Get(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, got.Year)
	assert.True(t, got.BettingOpen)

	region, err := got.Region(bracket.West)
	require.NoError(t, err)
	assert.Equal(t, "A", region.Round1[0].Winner)
	assert.Equal(t, 80, region.Round1[0].HomeScore)
	assert.Equal(t, "A", region.Round2[0].Home)

	_, err = s.Get(ctx, 1999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewTournamentStore(db)
	ctx := context.Background()

	tournament := bracket.New(2024, bracket.DefaultRegionOrder)

	tx := mustTx(t, db)
	require.NoError(t, s.Save(ctx, tx, tournament))
	require.NoError(t, tx.Commit())

	require.NoError(t, tournament.CloseBets())

	tx = mustTx(t, db)
	require.NoError(t, s.Save(ctx, tx, tournament))
	require.NoError(t, tx.Commit())

	got, err := s.Get(ctx, 2024)
	require.NoError(t, err)
	assert.False(t, got.BettingOpen)

	// Mirror columns track the blob.
	var row struct {
		BettingOpen  bool   `db:"betting_open"`
		CurrentRound int    `db:"current_round"`
		Champion     string `db:"champion"`
	}
	err = db.GetContext(ctx, &row, "SELECT betting_open, current_round, champion FROM tournaments WHERE year = 2024")
	require.NoError(t, err)
	assert.False(t, row.BettingOpen)
	assert.Zero(t, row.CurrentRound)
	assert.Empty(t, row.Champion)
}

func TestTournamentExistsAndDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewTournamentStore(db)
	ctx := context.Background()

	tx := mustTx(t, db)
	exists, err := s.Exists(ctx, tx, 2024)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Save(ctx, tx, bracket.New(2024, bracket.DefaultRegionOrder)))
	exists, err = s.Exists(ctx, tx, 2024)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, tx, 2024))
	exists, err = s.Exists(ctx, tx, 2024)
	require.NoError(t, err)
	assert.False(t, exists)
	require.NoError(t, tx.Commit())
}

func TestSettlementCursor(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	s := NewSettlementStore(db)
	ctx := context.Background()

	tx := mustTx(t, db)

	c, err := s.Get(ctx, tx, "score", 2024)
	require.NoError(t, err)
	assert.Equal(t, "score", c.Operation)
	assert.Zero(t, c.Position)
	assert.False(t, c.Finished)

	c.Phase = "allocate"
	c.Position = 42
	require.NoError(t, s.Save(ctx, tx, c))

	c.Position = 99
	c.Finished = true
	require.NoError(t, s.Save(ctx, tx, c))
	require.NoError(t, tx.Commit())

	tx = mustTx(t, db)
	defer tx.Rollback()
	got, err := s.Get(ctx, tx, "score", 2024)
	require.NoError(t, err)
	assert.Equal(t, "allocate", got.Phase)
	assert.Equal(t, int64(99), got.Position)
	assert.True(t, got.Finished)

	// Cursors are independent per operation.
	other, err := s.Get(ctx, tx, "burn", 2024)
	require.NoError(t, err)
	assert.Zero(t, other.Position)
	assert.False(t, other.Finished)
}

package token

import (
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

func TestLedgerBalances(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ledger := NewLedger(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	balance, err := ledger.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, balance)

	require.NoError(t, ledger.Mint(ctx, alice, 100))
	require.NoError(t, ledger.Mint(ctx, alice, 50))

	balance, err = ledger.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.Transfer(ctx, tx, alice, bob, 60))
	require.NoError(t, tx.Commit())

	balance, err = ledger.BalanceOf(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(90), balance)
	balance, err = ledger.BalanceOf(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(60), balance)
}

func TestTransferInsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ledger := NewLedger(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()
	require.NoError(t, ledger.Mint(ctx, alice, 10))

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = ledger.Transfer(ctx, tx, alice, bob, 11)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransferFrom(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ledger := NewLedger(db)
	ctx := context.Background()

	owner := uuid.New()
	spender := uuid.New()
	treasury := uuid.New()
	require.NoError(t, ledger.Mint(ctx, owner, 100))

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	err = ledger.TransferFrom(ctx, tx, owner, spender, treasury, 20)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	tx.Rollback()

	require.NoError(t, ledger.Approve(ctx, owner, spender, 30))

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.TransferFrom(ctx, tx, owner, spender, treasury, 20))
	require.NoError(t, tx.Commit())

	balance, err := ledger.BalanceOf(ctx, treasury)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)

	// The allowance is consumed, not reusable.
	allowance, err := ledger.Allowance(ctx, owner, spender)
	require.NoError(t, err)
	assert.Equal(t, int64(10), allowance)

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = ledger.TransferFrom(ctx, tx, owner, spender, treasury, 20)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

func TestTransferZeroAmountIsNoop(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ledger := NewLedger(db)
	ctx := context.Background()

	broke := uuid.New()
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.NoError(t, ledger.Transfer(ctx, tx, broke, uuid.New(), 0))
}

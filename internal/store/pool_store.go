package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/openbracket/madpool/internal/pool"
)

type PoolStore struct {
	db *sqlx.DB
}

func NewPoolStore(db *sqlx.DB) *PoolStore {
	return &PoolStore{db: db}
}

// CreatePool inserts a pool and fills in its allocated id. Name
// collisions (exact, case-sensitive) are reported as ErrNameExists.
func (s *PoolStore) CreatePool(ctx context.Context, tx *sqlx.Tx, p *pool.Pool) error {
	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM pools WHERE name = ?", p.Name); err != nil {
		return err
	}
	if count > 0 {
		return pool.ErrNameExists
	}
	res, err := tx.NamedExecContext(ctx, `INSERT INTO pools (address, kind, name, pin, year)
		VALUES (:address, :kind, :name, :pin, :year)`, p)
	if err != nil {
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (s *PoolStore) GetPool(ctx context.Context, id int64) (*pool.Pool, error) {
	var p pool.Pool
	err := s.db.GetContext(ctx, &p, "SELECT * FROM pools WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrPoolNotFound
	}
	return &p, err
}

func (s *PoolStore) GetPoolTx(ctx context.Context, tx *sqlx.Tx, id int64) (*pool.Pool, error) {
	var p pool.Pool
	err := tx.GetContext(ctx, &p, "SELECT * FROM pools WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrPoolNotFound
	}
	return &p, err
}

// NextTokenID allocates the next sequential token id within a pool.
func (s *PoolStore) NextTokenID(ctx context.Context, tx *sqlx.Tx, poolID int64) (int64, error) {
	var next int64
	err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(token_id), 0) + 1 FROM entries WHERE pool_id = ?", poolID)
	return next, err
}

func (s *PoolStore) CreateEntry(ctx context.Context, tx *sqlx.Tx, e *pool.Entry) error {
	res, err := tx.NamedExecContext(ctx, `INSERT INTO entries (pool_id, token_id, bettor, year, prediction, points, prize_claimable, prize_claimed, burned)
		VALUES (:pool_id, :token_id, :bettor, :year, :prediction, :points, :prize_claimable, :prize_claimed, :burned)`, e)
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (s *PoolStore) GetEntry(ctx context.Context, poolID, tokenID int64) (*pool.Entry, error) {
	var e pool.Entry
	err := s.db.GetContext(ctx, &e, "SELECT * FROM entries WHERE pool_id = ? AND token_id = ?", poolID, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrEntryNotFound
	}
	return &e, err
}

func (s *PoolStore) GetEntryTx(ctx context.Context, tx *sqlx.Tx, poolID, tokenID int64) (*pool.Entry, error) {
	var e pool.Entry
	err := tx.GetContext(ctx, &e, "SELECT * FROM entries WHERE pool_id = ? AND token_id = ?", poolID, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pool.ErrEntryNotFound
	}
	return &e, err
}

// ListYearEntries returns up to limit entries for a year with row id
// greater than after, in row id order. This is the settlement cursor walk.
func (s *PoolStore) ListYearEntries(ctx context.Context, tx *sqlx.Tx, year int, after int64, limit int) ([]pool.Entry, error) {
	var entries []pool.Entry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE year = ? AND id > ? ORDER BY id ASC LIMIT ?", year, after, limit)
	return entries, err
}

func (s *PoolStore) CountYearEntries(ctx context.Context, tx *sqlx.Tx, year int) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries WHERE year = ?", year)
	return count, err
}

func (s *PoolStore) CountPoolEntries(ctx context.Context, tx *sqlx.Tx, poolID int64) (int64, error) {
	var count int64
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries WHERE pool_id = ?", poolID)
	return count, err
}

// PoolTopScore returns the highest awarded score in a pool and how many
// entries share it, plus the lowest row id among them for tie remainder.
func (s *PoolStore) PoolTopScore(ctx context.Context, tx *sqlx.Tx, poolID int64) (top int, winners int64, firstID int64, err error) {
	var row struct {
		Top     *int   `db:"top"`
		Winners int64  `db:"winners"`
		FirstID *int64 `db:"first_id"`
	}
	err = tx.GetContext(ctx, &row, `SELECT MAX(points) AS top,
			COUNT(*) FILTER (WHERE points = (SELECT MAX(points) FROM entries WHERE pool_id = ?)) AS winners,
			MIN(id) FILTER (WHERE points = (SELECT MAX(points) FROM entries WHERE pool_id = ?)) AS first_id
		FROM entries WHERE pool_id = ?`, poolID, poolID, poolID)
	if err != nil {
		return 0, 0, 0, err
	}
	if row.Top == nil {
		return 0, 0, 0, nil
	}
	var first int64
	if row.FirstID != nil {
		first = *row.FirstID
	}
	return *row.Top, row.Winners, first, nil
}

func (s *PoolStore) SetEntryScore(ctx context.Context, tx *sqlx.Tx, entryID int64, points int) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET points = ? WHERE id = ?", points, entryID)
	return err
}

func (s *PoolStore) SetEntryPrize(ctx context.Context, tx *sqlx.Tx, entryID, claimable int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET prize_claimable = ? WHERE id = ?", claimable, entryID)
	return err
}

func (s *PoolStore) SetEntryClaimed(ctx context.Context, tx *sqlx.Tx, entryID, claimed int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET prize_claimed = ? WHERE id = ?", claimed, entryID)
	return err
}

// ForfeitEntry zeroes any unclaimed remainder.
func (s *PoolStore) ForfeitEntry(ctx context.Context, tx *sqlx.Tx, entryID int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET prize_claimable = prize_claimed WHERE id = ?", entryID)
	return err
}

func (s *PoolStore) BurnEntry(ctx context.Context, tx *sqlx.Tx, entryID int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET burned = 1 WHERE id = ?", entryID)
	return err
}

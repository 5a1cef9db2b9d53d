package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Cursor is the persisted position of one resumable settlement
// operation for a year. Position is the last processed entry row id;
// Phase lets a single operation run in ordered sub-passes.
type Cursor struct {
	Operation string `db:"operation"`
	Year      int    `db:"year"`
	Phase     string `db:"phase"`
	Position  int64  `db:"position"`
	Finished  bool   `db:"finished"`
}

type SettlementStore struct {
	db *sqlx.DB
}

func NewSettlementStore(db *sqlx.DB) *SettlementStore {
	return &SettlementStore{db: db}
}

// Get loads the cursor for (operation, year), returning a fresh ACTIVE
// cursor when none has been persisted yet.
func (s *SettlementStore) Get(ctx context.Context, tx *sqlx.Tx, operation string, year int) (*Cursor, error) {
	var c Cursor
	err := tx.GetContext(ctx, &c, "SELECT * FROM settlement_cursors WHERE operation = ? AND year = ?", operation, year)
	if errors.Is(err, sql.ErrNoRows) {
		return &Cursor{Operation: operation, Year: year}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SettlementStore) Save(ctx context.Context, tx *sqlx.Tx, c *Cursor) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO settlement_cursors (operation, year, phase, position, finished)
		VALUES (:operation, :year, :phase, :position, :finished)
		ON CONFLICT (operation, year) DO UPDATE SET phase = excluded.phase, position = excluded.position, finished = excluded.finished`, c)
	return err
}

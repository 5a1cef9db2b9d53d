package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/openbracket/madpool/internal/bracket"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentStore keeps one serialized Tournament per year. The betting
// and round columns mirror the blob so the query surface can filter
// without deserializing.
type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

type tournamentRow struct {
	Year         int    `db:"year"`
	Data         []byte `db:"data"`
	BettingOpen  bool   `db:"betting_open"`
	CurrentRound int    `db:"current_round"`
	Champion     string `db:"champion"`
}

func decode(row tournamentRow) (*bracket.Tournament, error) {
	var t bracket.Tournament
	if err := json.Unmarshal(row.Data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TournamentStore) Get(ctx context.Context, year int) (*bracket.Tournament, error) {
	var row tournamentRow
	err := s.db.GetContext(ctx, &row, "SELECT year, data, betting_open, current_round, champion FROM tournaments WHERE year = ?", year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(row)
}

func (s *TournamentStore) GetTx(ctx context.Context, tx *sqlx.Tx, year int) (*bracket.Tournament, error) {
	var row tournamentRow
	err := tx.GetContext(ctx, &row, "SELECT year, data, betting_open, current_round, champion FROM tournaments WHERE year = ?", year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(row)
}

func (s *TournamentStore) Save(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	row := tournamentRow{
		Year:         t.Year,
		Data:         data,
		BettingOpen:  t.BettingOpen,
		CurrentRound: t.CurrentRound,
		Champion:     t.FinalFour.Champion,
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO tournaments (year, data, betting_open, current_round, champion, updated_at)
		VALUES (:year, :data, :betting_open, :current_round, :champion, CURRENT_TIMESTAMP)
		ON CONFLICT (year) DO UPDATE SET data = excluded.data, betting_open = excluded.betting_open,
			current_round = excluded.current_round, champion = excluded.champion, updated_at = CURRENT_TIMESTAMP`, row)
	return err
}

func (s *TournamentStore) Exists(ctx context.Context, tx *sqlx.Tx, year int) (bool, error) {
	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM tournaments WHERE year = ?", year); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *TournamentStore) Delete(ctx context.Context, tx *sqlx.Tx, year int) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM tournaments WHERE year = ?", year)
	return err
}

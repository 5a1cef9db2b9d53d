package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/pool"
	"github.com/openbracket/madpool/internal/store"
)

// GameService applies tournament state machine operations. Every call
// loads the year's tournament, applies one domain operation and saves it
// back inside a single transaction, so effects are all-or-nothing.
// Writers are serialized; readers see the last committed snapshot.
type GameService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	pools       *store.PoolStore
	regionOrder [4]bracket.RegionName

	mu sync.Mutex
}

func NewGameService(db *sqlx.DB, tournaments *store.TournamentStore, pools *store.PoolStore, regionOrder [4]bracket.RegionName) *GameService {
	return &GameService{db: db, tournaments: tournaments, pools: pools, regionOrder: regionOrder}
}

func (s *GameService) withTournament(ctx context.Context, year int, fn func(*bracket.Tournament) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	t, err := s.tournaments.GetTx(ctx, tx, year)
	if err != nil {
		return err
	}
	if err := fn(t); err != nil {
		return err
	}
	if err := s.tournaments.Save(ctx, tx, t); err != nil {
		return fmt.Errorf("failed to save tournament: %w", err)
	}
	return tx.Commit()
}

// CreateGame creates an empty tournament for a year.
func (s *GameService) CreateGame(ctx context.Context, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exists, err := s.tournaments.Exists(ctx, tx, year)
	if err != nil {
		return err
	}
	if exists {
		return bracket.ErrAlreadyInitialized
	}
	if err := s.tournaments.Save(ctx, tx, bracket.New(year, s.regionOrder)); err != nil {
		return err
	}
	return tx.Commit()
}

// ResetGame deletes a year's tournament and recreates it empty. A year
// that already holds entries cannot be reset; bets must never be
// orphaned silently.
func (s *GameService) ResetGame(ctx context.Context, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := s.pools.CountYearEntries(ctx, tx, year)
	if err != nil {
		return err
	}
	if count > 0 {
		return pool.ErrYearHasEntries
	}
	if err := s.tournaments.Delete(ctx, tx, year); err != nil {
		return err
	}
	if err := s.tournaments.Save(ctx, tx, bracket.New(year, s.regionOrder)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *GameService) InitFirstFourMatch(ctx context.Context, year int, code, home, away string) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.InitFirstFourMatch(code, home, away)
	})
}

func (s *GameService) DetermineFirstFourWinner(ctx context.Context, year int, code, winner string, homeScore, awayScore int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.DetermineFirstFourWinner(code, winner, homeScore, awayScore)
	})
}

func (s *GameService) InitRegion(ctx context.Context, year int, name bracket.RegionName, teams [16]string) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.InitRegion(name, teams)
	})
}

func (s *GameService) DetermineMatchWinner(ctx context.Context, year int, name bracket.RegionName, winner string, round, index, homeScore, awayScore int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.DetermineMatchWinner(name, winner, round, index, homeScore, awayScore)
	})
}

func (s *GameService) DetermineFinalRegionWinner(ctx context.Context, year int, name bracket.RegionName, winner string, homeScore, awayScore int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.DetermineFinalRegionWinner(name, winner, homeScore, awayScore)
	})
}

func (s *GameService) DetermineFinalFourWinner(ctx context.Context, year, index int, winner string, homeScore, awayScore int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.DetermineFinalFourWinner(index, winner, homeScore, awayScore)
	})
}

func (s *GameService) DetermineChampion(ctx context.Context, year int, winner string, homeScore, awayScore int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.DetermineChampion(winner, homeScore, awayScore)
	})
}

func (s *GameService) AdvanceRound(ctx context.Context, year int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.AdvanceRound()
	})
}

func (s *GameService) CloseBets(ctx context.Context, year int) error {
	return s.withTournament(ctx, year, func(t *bracket.Tournament) error {
		return t.CloseBets()
	})
}

// GetTournament returns the committed snapshot for a year.
func (s *GameService) GetTournament(ctx context.Context, year int) (*bracket.Tournament, error) {
	return s.tournaments.Get(ctx, year)
}

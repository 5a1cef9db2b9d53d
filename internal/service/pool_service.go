package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/pool"
	"github.com/openbracket/madpool/internal/store"
	"github.com/openbracket/madpool/internal/token"
	"github.com/openbracket/madpool/internal/utils"
)

// BetPlaced identifies a successful bet placement.
type BetPlaced struct {
	Bettor  uuid.UUID
	Year    int
	PoolID  int64
	TokenID int64
}

// PoolService manages wagering venues and bet placement. Placing a bet
// debits the fixed entry fee through the payment token inside the same
// transaction that records the entry.
type PoolService struct {
	db          *sqlx.DB
	pools       *store.PoolStore
	tournaments *store.TournamentStore
	payment     token.Payment
	entryFee    int64
	treasury    uuid.UUID
	weights     bracket.Weights

	mu sync.Mutex
}

func NewPoolService(db *sqlx.DB, pools *store.PoolStore, tournaments *store.TournamentStore, payment token.Payment, entryFee int64, treasury uuid.UUID, weights bracket.Weights) *PoolService {
	return &PoolService{
		db:          db,
		pools:       pools,
		tournaments: tournaments,
		payment:     payment,
		entryFee:    entryFee,
		treasury:    treasury,
		weights:     weights,
	}
}

// CreatePool creates a wagering venue for a tournament year. Protocol
// pools require the operator role; private pools require a PIN. Name
// uniqueness is exact and case-sensitive; callers wanting a suffix-retry
// policy implement it on their side.
func (s *PoolService) CreatePool(ctx context.Context, kind pool.Kind, name string, pin string, year int, operator bool) (*pool.Pool, error) {
	if kind == pool.Protocol && !operator {
		return nil, pool.ErrUnauthorized
	}
	if kind == pool.Private && utils.StringOrNil(pin) == nil {
		return nil, pool.ErrPinRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.tournaments.GetTx(ctx, tx, year); err != nil {
		return nil, err
	}

	p := &pool.Pool{
		Address: uuid.New(),
		Kind:    kind,
		Name:    name,
		Year:    year,
	}
	if kind == pool.Private {
		p.PIN = utils.StringOrNil(pin)
	}
	if err := s.pools.CreatePool(ctx, tx, p); err != nil {
		return nil, err
	}
	return p, tx.Commit()
}

// PlaceBet purchases one entry: it validates the prediction, the pool
// access rules and the betting window, debits the entry fee and mints
// the entry. The purchase is irreversible.
func (s *PoolService) PlaceBet(ctx context.Context, poolID int64, year int, picks []byte, pin string, bettor uuid.UUID) (*BetPlaced, error) {
	prediction, err := bracket.ParsePrediction(picks)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.pools.GetPoolTx(ctx, tx, poolID)
	if err != nil {
		return nil, err
	}
	if p.Year != year {
		return nil, pool.ErrPoolNotFound
	}
	if p.Kind == pool.Private && (p.PIN == nil || pin != *p.PIN) {
		return nil, pool.ErrPinMismatch
	}

	t, err := s.tournaments.GetTx(ctx, tx, year)
	if err != nil {
		return nil, err
	}
	if !t.BettingOpen {
		return nil, bracket.ErrBetsClosed
	}

	if err := s.payment.TransferFrom(ctx, tx, bettor, p.Address, s.treasury, s.entryFee); err != nil {
		return nil, fmt.Errorf("entry fee payment failed: %w", err)
	}

	tokenID, err := s.pools.NextTokenID(ctx, tx, poolID)
	if err != nil {
		return nil, err
	}
	entry := &pool.Entry{
		PoolID:     poolID,
		TokenID:    tokenID,
		Bettor:     bettor,
		Year:       year,
		Prediction: prediction.Bytes(),
	}
	if err := s.pools.CreateEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &BetPlaced{Bettor: bettor, Year: year, PoolID: poolID, TokenID: tokenID}, nil
}

func (s *PoolService) GetPool(ctx context.Context, id int64) (*pool.Pool, error) {
	return s.pools.GetPool(ctx, id)
}

func (s *PoolService) GetEntry(ctx context.Context, poolID, tokenID int64) (*pool.Entry, error) {
	return s.pools.GetEntry(ctx, poolID, tokenID)
}

// BetValidator reports the per-slot outcome of an entry's picks against
// the realized bracket, plus the point total. Read-only.
func (s *PoolService) BetValidator(ctx context.Context, poolID, tokenID int64) (results [bracket.PredictionSize]byte, points int, err error) {
	entry, err := s.pools.GetEntry(ctx, poolID, tokenID)
	if err != nil {
		return results, 0, err
	}
	t, err := s.tournaments.Get(ctx, entry.Year)
	if err != nil {
		return results, 0, err
	}
	prediction, err := bracket.ParsePrediction(entry.Prediction)
	if err != nil {
		return results, 0, err
	}
	results, points, _ = bracket.Validate(t, prediction, s.weights)
	return results, points, nil
}

// AmountPrizeClaimed returns an entry's remaining claimable prize and
// the amount already claimed.
func (s *PoolService) AmountPrizeClaimed(ctx context.Context, poolID, tokenID int64) (toClaim, claimed int64, err error) {
	entry, err := s.pools.GetEntry(ctx, poolID, tokenID)
	if err != nil {
		return 0, 0, err
	}
	return entry.Unclaimed(), entry.PrizeClaimed, nil
}

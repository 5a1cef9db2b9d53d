package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/openbracket/madpool/internal/bracket"
	"github.com/openbracket/madpool/internal/pool"
	"github.com/openbracket/madpool/internal/store"
	"github.com/openbracket/madpool/internal/token"
)

// IterationResult tells a settlement caller whether to keep looping.
type IterationResult int

const (
	ContinueIteration IterationResult = iota
	IterationFinished
)

// Settlement operations, keyed with the year in the cursor table.
const (
	opScore   = "score"
	opBurn    = "burn"
	opDismiss = "dismiss"
)

// Scoring runs in two ordered sub-passes so every batch stays bounded:
// first award points per entry, then allocate prize shares once all
// points are known.
const (
	phaseScore    = "score"
	phaseAllocate = "allocate"
)

// SettlementService distributes prizes after the tournament completes.
// A pool may hold an unbounded number of entries, so scoring, burning
// and dismissal are resumable iterations over a persisted cursor; each
// call processes one bounded batch and either lands entirely or not at
// all. Re-invoking a finished iteration is a no-op.
type SettlementService struct {
	db          *sqlx.DB
	pools       *store.PoolStore
	tournaments *store.TournamentStore
	cursors     *store.SettlementStore
	payment     token.Payment
	policy      PrizePolicy
	weights     bracket.Weights
	entryFee    int64
	treasury    uuid.UUID
	batchSize   int

	mu sync.Mutex
}

func NewSettlementService(db *sqlx.DB, pools *store.PoolStore, tournaments *store.TournamentStore, cursors *store.SettlementStore, payment token.Payment, policy PrizePolicy, weights bracket.Weights, entryFee int64, treasury uuid.UUID, batchSize int) *SettlementService {
	if batchSize < 1 {
		batchSize = 50
	}
	return &SettlementService{
		db:          db,
		pools:       pools,
		tournaments: tournaments,
		cursors:     cursors,
		payment:     payment,
		policy:      policy,
		weights:     weights,
		entryFee:    entryFee,
		treasury:    treasury,
		batchSize:   batchSize,
	}
}

// iterate runs one batch of an operation inside a single transaction.
// The batch's effects and the cursor advance commit together, so a
// failed batch leaves the cursor untouched and a retry reprocesses the
// same entries. process owns the cursor's position and phase and
// reports whether the operation is finished.
func (s *SettlementService) iterate(ctx context.Context, operation string, year int, process func(tx *sqlx.Tx, c *store.Cursor, entries []pool.Entry) (bool, error)) (IterationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return IterationFinished, err
	}
	defer tx.Rollback()

	t, err := s.tournaments.GetTx(ctx, tx, year)
	if err != nil {
		return IterationFinished, err
	}
	if !t.Completed() {
		return IterationFinished, bracket.ErrTournamentNotComplete
	}

	cursor, err := s.cursors.Get(ctx, tx, operation, year)
	if err != nil {
		return IterationFinished, err
	}
	if cursor.Finished {
		return IterationFinished, nil
	}

	entries, err := s.pools.ListYearEntries(ctx, tx, year, cursor.Position, s.batchSize)
	if err != nil {
		return IterationFinished, err
	}

	done, err := process(tx, cursor, entries)
	if err != nil {
		return IterationFinished, err
	}
	cursor.Finished = done
	if err := s.cursors.Save(ctx, tx, cursor); err != nil {
		return IterationFinished, err
	}
	if err := tx.Commit(); err != nil {
		return IterationFinished, err
	}
	if done {
		return IterationFinished, nil
	}
	return ContinueIteration, nil
}

// IterateYearTokens scores one batch of a year's entries against the
// realized bracket and, once every entry is scored, allocates prize
// shares pool by pool in a second cursor pass.
func (s *SettlementService) IterateYearTokens(ctx context.Context, year int) (IterationResult, error) {
	return s.iterate(ctx, opScore, year, func(tx *sqlx.Tx, c *store.Cursor, entries []pool.Entry) (bool, error) {
		t, err := s.tournaments.GetTx(ctx, tx, year)
		if err != nil {
			return false, err
		}
		if c.Phase == "" {
			c.Phase = phaseScore
		}
		switch c.Phase {
		case phaseScore:
			for i := range entries {
				prediction, err := bracket.ParsePrediction(entries[i].Prediction)
				if err != nil {
					return false, err
				}
				points := bracket.Score(t, prediction, s.weights)
				if err := s.pools.SetEntryScore(ctx, tx, entries[i].ID, points); err != nil {
					return false, err
				}
			}
			if len(entries) < s.batchSize {
				// All points awarded; restart the walk to allocate prizes.
				c.Phase = phaseAllocate
				c.Position = 0
			} else {
				c.Position = entries[len(entries)-1].ID
			}
			return false, nil
		default:
			return s.allocateBatch(ctx, tx, c, entries)
		}
	})
}

type poolStats struct {
	pot     int64
	top     int
	winners int64
	firstID int64
}

func (s *SettlementService) allocateBatch(ctx context.Context, tx *sqlx.Tx, c *store.Cursor, entries []pool.Entry) (bool, error) {
	stats := make(map[int64]poolStats)
	for i := range entries {
		e := &entries[i]
		st, ok := stats[e.PoolID]
		if !ok {
			top, winners, firstID, err := s.pools.PoolTopScore(ctx, tx, e.PoolID)
			if err != nil {
				return false, err
			}
			count, err := s.pools.CountPoolEntries(ctx, tx, e.PoolID)
			if err != nil {
				return false, err
			}
			st = poolStats{pot: s.entryFee * count, top: top, winners: winners, firstID: firstID}
			stats[e.PoolID] = st
		}
		var claimable int64
		if e.Points != nil && *e.Points == st.top {
			claimable = s.policy.Share(st.pot, st.winners, e.ID == st.firstID)
		}
		if err := s.pools.SetEntryPrize(ctx, tx, e.ID, claimable); err != nil {
			return false, err
		}
	}
	if len(entries) > 0 {
		c.Position = entries[len(entries)-1].ID
	}
	return len(entries) < s.batchSize, nil
}

// IterateBurnYearTokens retires one batch of settled entries. Only
// entries with no unclaimed balance are burned; run the dismiss
// iteration first to forfeit abandoned remainders.
func (s *SettlementService) IterateBurnYearTokens(ctx context.Context, year int) (IterationResult, error) {
	return s.iterate(ctx, opBurn, year, func(tx *sqlx.Tx, c *store.Cursor, entries []pool.Entry) (bool, error) {
		for i := range entries {
			e := &entries[i]
			if e.Burned || e.Unclaimed() > 0 {
				continue
			}
			if err := s.pools.BurnEntry(ctx, tx, e.ID); err != nil {
				return false, err
			}
		}
		if len(entries) > 0 {
			c.Position = entries[len(entries)-1].ID
		}
		return len(entries) < s.batchSize, nil
	})
}

// IterateDismissYear forfeits one batch of unclaimed prize remainders
// after the claim window. Forfeited funds stay with the treasury.
func (s *SettlementService) IterateDismissYear(ctx context.Context, year int) (IterationResult, error) {
	return s.iterate(ctx, opDismiss, year, func(tx *sqlx.Tx, c *store.Cursor, entries []pool.Entry) (bool, error) {
		for i := range entries {
			if entries[i].Unclaimed() == 0 {
				continue
			}
			if err := s.pools.ForfeitEntry(ctx, tx, entries[i].ID); err != nil {
				return false, err
			}
		}
		if len(entries) > 0 {
			c.Position = entries[len(entries)-1].ID
		}
		return len(entries) < s.batchSize, nil
	})
}

// Claim transfers an entry's unclaimed prize to its bettor and raises
// the claimed amount monotonically. Claiming twice never double-pays;
// a fully claimed entry transfers zero.
func (s *SettlementService) Claim(ctx context.Context, poolID, tokenID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	entry, err := s.pools.GetEntryTx(ctx, tx, poolID, tokenID)
	if err != nil {
		return 0, err
	}
	amount := entry.Unclaimed()
	if amount == 0 {
		return 0, tx.Commit()
	}
	if err := s.payment.Transfer(ctx, tx, s.treasury, entry.Bettor, amount); err != nil {
		return 0, err
	}
	if err := s.pools.SetEntryClaimed(ctx, tx, entry.ID, entry.PrizeClaimable); err != nil {
		return 0, err
	}
	return amount, tx.Commit()
}

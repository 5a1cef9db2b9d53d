package pool

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one purchased prediction plus its settlement state. Token ids
// are allocated sequentially per pool; the row id orders entries across
// all pools of a year for cursor-based settlement iteration.
type Entry struct {
	ID             int64     `db:"id"`
	PoolID         int64     `db:"pool_id"`
	TokenID        int64     `db:"token_id"`
	Bettor         uuid.UUID `db:"bettor"`
	Year           int       `db:"year"`
	Prediction     []byte    `db:"prediction"`
	Points         *int      `db:"points"`
	PrizeClaimable int64     `db:"prize_claimable"`
	PrizeClaimed   int64     `db:"prize_claimed"`
	Burned         bool      `db:"burned"`
	CreatedAt      time.Time `db:"created_at"`
}

// Unclaimed returns the remaining claimable balance.
func (e *Entry) Unclaimed() int64 {
	return e.PrizeClaimable - e.PrizeClaimed
}

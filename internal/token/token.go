package token

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// External dependency failures surfaced to callers unchanged.
var (
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
)

// Payment is the fungible bet token the engine collects entry fees with
// and pays prizes from. Transfer operations join the caller's
// transaction so a failed debit never leaves a partial entry behind.
type Payment interface {
	BalanceOf(ctx context.Context, account uuid.UUID) (int64, error)
	Allowance(ctx context.Context, owner, spender uuid.UUID) (int64, error)
	Approve(ctx context.Context, owner, spender uuid.UUID, amount int64) error
	TransferFrom(ctx context.Context, tx *sqlx.Tx, owner, spender, to uuid.UUID, amount int64) error
	Transfer(ctx context.Context, tx *sqlx.Tx, from, to uuid.UUID, amount int64) error
}

package token

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Ledger is an SQLite-backed Payment implementation. It keeps balances
// and allowances in the engine's own database, which is enough for local
// deployments and tests; production deployments adapt a real token here.
type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) BalanceOf(ctx context.Context, account uuid.UUID) (int64, error) {
	var balance int64
	err := l.db.GetContext(ctx, &balance, "SELECT balance FROM token_balances WHERE account = ?", account)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (l *Ledger) Allowance(ctx context.Context, owner, spender uuid.UUID) (int64, error) {
	var amount int64
	err := l.db.GetContext(ctx, &amount, "SELECT amount FROM token_allowances WHERE owner = ? AND spender = ?", owner, spender)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return amount, err
}

func (l *Ledger) Approve(ctx context.Context, owner, spender uuid.UUID, amount int64) error {
	_, err := l.db.ExecContext(ctx, `INSERT INTO token_allowances (owner, spender, amount) VALUES (?, ?, ?)
		ON CONFLICT (owner, spender) DO UPDATE SET amount = excluded.amount`, owner, spender, amount)
	return err
}

// Mint credits an account. Used by tests and local setups to fund bettors.
func (l *Ledger) Mint(ctx context.Context, account uuid.UUID, amount int64) error {
	_, err := l.db.ExecContext(ctx, `INSERT INTO token_balances (account, balance) VALUES (?, ?)
		ON CONFLICT (account) DO UPDATE SET balance = balance + excluded.balance`, account, amount)
	return err
}

func (l *Ledger) TransferFrom(ctx context.Context, tx *sqlx.Tx, owner, spender, to uuid.UUID, amount int64) error {
	var allowance int64
	err := tx.GetContext(ctx, &allowance, "SELECT amount FROM token_allowances WHERE owner = ? AND spender = ?", owner, spender)
	if errors.Is(err, sql.ErrNoRows) {
		allowance = 0
	} else if err != nil {
		return err
	}
	if allowance < amount {
		return ErrInsufficientAllowance
	}
	if err := l.move(ctx, tx, owner, to, amount); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE token_allowances SET amount = amount - ? WHERE owner = ? AND spender = ?", amount, owner, spender)
	return err
}

func (l *Ledger) Transfer(ctx context.Context, tx *sqlx.Tx, from, to uuid.UUID, amount int64) error {
	return l.move(ctx, tx, from, to, amount)
}

func (l *Ledger) move(ctx context.Context, tx *sqlx.Tx, from, to uuid.UUID, amount int64) error {
	if amount == 0 {
		return nil
	}
	var balance int64
	err := tx.GetContext(ctx, &balance, "SELECT balance FROM token_balances WHERE account = ?", from)
	if errors.Is(err, sql.ErrNoRows) {
		balance = 0
	} else if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	if _, err := tx.ExecContext(ctx, "UPDATE token_balances SET balance = balance - ? WHERE account = ?", amount, from); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO token_balances (account, balance) VALUES (?, ?)
		ON CONFLICT (account) DO UPDATE SET balance = balance + excluded.balance`, to, amount)
	return err
}

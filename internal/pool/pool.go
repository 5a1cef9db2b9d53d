package pool

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes who may create a pool and who may enter it.
type Kind string

const (
	// Protocol pools are created by the operator role only.
	Protocol Kind = "protocol"
	// Public pools are open to anyone.
	Public Kind = "public"
	// Private pools require the pool PIN on entry.
	Private Kind = "private"
)

var (
	ErrNameExists     = errors.New("pool name already exists")
	ErrPoolNotFound   = errors.New("pool not found")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrPinRequired    = errors.New("private pool requires a pin")
	ErrPinMismatch    = errors.New("pin does not match")
	ErrUnauthorized   = errors.New("operator role required")
	ErrYearHasEntries = errors.New("year already has entries")
)

// Pool is a named wagering venue holding entries for one tournament year.
type Pool struct {
	ID        int64     `db:"id"`
	Address   uuid.UUID `db:"address"`
	Kind      Kind      `db:"kind"`
	Name      string    `db:"name"`
	PIN       *string   `db:"pin"`
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

package model

import (
	"time"

	"video-subtitle-translator/internal/domain"

	"github.com/google/uuid"
)

// User is a domain entity owning tasks and a prepaid balance.
// Balance is stored as integer cents so money math is exact.
type User struct {
	ID           string
	Username     string
	BalanceCents int64
	IsAdmin      bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, username string, balanceCents int64) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	if balanceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Username:     username,
		BalanceCents: balanceCents,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

// Debit subtracts amountCents from the balance.
// It never lets the balance go negative.
func (u *User) Debit(amountCents int64) error {
	if amountCents <= 0 {
		return domain.ErrInvalidArgument
	}
	if u.BalanceCents < amountCents {
		return domain.ErrInsufficientBalance
	}
	u.BalanceCents -= amountCents
	u.LastActiveAt = time.Now()
	return nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }

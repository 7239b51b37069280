package repository

import (
	"context"

	"video-subtitle-translator/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, qx any, u *model.User) error
	FindByID(ctx context.Context, qx any, id string) (*model.User, error)
	// FindByIDForUpdate must lock the row for the duration of the enclosing
	// transaction so concurrent debits never lose updates.
	FindByIDForUpdate(ctx context.Context, qx any, id string) (*model.User, error)
	UpdateBalance(ctx context.Context, qx any, id string, balanceCents int64) error
}

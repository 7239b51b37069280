package repository

import (
	"context"

	"video-subtitle-translator/internal/domain/model"
)

// -----------------------------
// Tasks
// -----------------------------

type TaskRepository interface {
	Save(ctx context.Context, qx any, t *model.Task) error
	FindByID(ctx context.Context, qx any, id string) (*model.Task, error)
	FindByUserID(ctx context.Context, qx any, userID string) ([]*model.Task, error)
}

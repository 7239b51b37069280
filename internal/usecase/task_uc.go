// File: internal/usecase/task_uc.go
package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/domain/ports/repository"
)

// Compile-time check
var _ TaskUseCase = (*taskUC)(nil)

// TaskCache fronts FindByID for status polling. The redis implementation
// satisfies this; tests use an in-memory fake or nil.
type TaskCache interface {
	Get(ctx context.Context, id string) (*model.Task, bool)
	Put(ctx context.Context, t *model.Task)
	Invalidate(ctx context.Context, id string)
}

type TaskUseCase interface {
	Create(ctx context.Context, userID, videoPath string) (*model.Task, error)
	FindByID(ctx context.Context, id string) (*model.Task, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Task, error)
}

type taskUC struct {
	tasks repository.TaskRepository
	cache TaskCache
	log   *zerolog.Logger
}

func NewTaskUseCase(tasks repository.TaskRepository, cache TaskCache, logger *zerolog.Logger) *taskUC {
	taskLog := logger.With().Str("component", "TaskUC").Logger()
	return &taskUC{tasks: tasks, cache: cache, log: &taskLog}
}

// Create records a freshly uploaded video as an UPLOADED task. The upload
// mechanics themselves live outside this service; we only receive the path.
func (t *taskUC) Create(ctx context.Context, userID, videoPath string) (*model.Task, error) {
	task, err := model.NewTask(uuid.NewString(), userID, videoPath)
	if err != nil {
		return nil, err
	}
	if err := t.tasks.Save(ctx, nil, task); err != nil {
		return nil, err
	}
	if t.cache != nil {
		t.cache.Put(ctx, task)
	}
	t.log.Info().Str("task_id", task.ID).Str("user_id", userID).Msg("task created")
	return task, nil
}

func (t *taskUC) FindByID(ctx context.Context, id string) (*model.Task, error) {
	if t.cache != nil {
		if task, ok := t.cache.Get(ctx, id); ok {
			return task, nil
		}
	}
	task, err := t.tasks.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		t.cache.Put(ctx, task)
	}
	return task, nil
}

func (t *taskUC) FindByUser(ctx context.Context, userID string) ([]*model.Task, error) {
	return t.tasks.FindByUserID(ctx, nil, userID)
}

//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
)

func seedUser(t *testing.T, id string) {
	t.Helper()
	u, err := model.NewUser(id, "task_owner", 0)
	if err != nil {
		t.Fatalf("model.NewUser() failed: %v", err)
	}
	if err := NewPostgresUserRepo(testPool).Save(context.Background(), nil, u); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
}

func TestTaskRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresTaskRepo(testPool)
	ctx := context.Background()

	t.Run("should save and reload a task with every field", func(t *testing.T) {
		cleanup(t)
		seedUser(t, "owner-1")

		task, err := model.NewTask("", "owner-1", "/videos/input.mp4")
		if err != nil {
			t.Fatalf("model.NewTask() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, task); err != nil {
			t.Fatalf("Failed to save task: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, task.ID)
		if err != nil {
			t.Fatalf("Failed to find task: %v", err)
		}
		if found.Status != model.TaskStatusUploaded {
			t.Errorf("Expected status UPLOADED, got %s", found.Status)
		}
		if found.VideoFilePath != "/videos/input.mp4" {
			t.Errorf("Unexpected video path %s", found.VideoFilePath)
		}
	})

	t.Run("should upsert status transitions and stage outputs", func(t *testing.T) {
		cleanup(t)
		seedUser(t, "owner-1")

		task, _ := model.NewTask("", "owner-1", "/videos/input.mp4")
		if err := repo.Save(ctx, nil, task); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		task.Advance(model.TaskStatusTranslated)
		task.AudioFilePath = "/work/audio/input.mp3"
		task.SrtFilePath = "/work/transcripts/input.srt"
		task.TranslatedSrtFilePath = "/work/translated/input.srt"
		task.SourceLanguage = "en"
		task.LanguageConfidence = 0.98
		if err := repo.Save(ctx, nil, task); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, task.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Status != model.TaskStatusTranslated {
			t.Errorf("Expected status TRANSLATED, got %s", found.Status)
		}
		if found.TranslatedSrtFilePath != "/work/translated/input.srt" {
			t.Errorf("Unexpected translated path %s", found.TranslatedSrtFilePath)
		}
		if found.SourceLanguage != "en" || found.LanguageConfidence != 0.98 {
			t.Errorf("Detected language lost: %s/%v", found.SourceLanguage, found.LanguageConfidence)
		}
	})

	t.Run("should persist the failure reason", func(t *testing.T) {
		cleanup(t)
		seedUser(t, "owner-1")

		task, _ := model.NewTask("", "owner-1", "/videos/input.mp4")
		task.MarkFailed("transcribe: whisper exit 1")
		if err := repo.Save(ctx, nil, task); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		found, _ := repo.FindByID(ctx, nil, task.ID)
		if found.Status != model.TaskStatusFailed {
			t.Errorf("Expected status FAILED, got %s", found.Status)
		}
		if found.ErrorMessage != "transcribe: whisper exit 1" {
			t.Errorf("Unexpected error message %q", found.ErrorMessage)
		}
	})

	t.Run("should list a user's tasks newest first", func(t *testing.T) {
		cleanup(t)
		seedUser(t, "owner-1")
		seedUser(t, "owner-2")

		for _, id := range []string{"t1", "t2", "t3"} {
			task, _ := model.NewTask(id, "owner-1", "/videos/"+id+".mp4")
			if err := repo.Save(ctx, nil, task); err != nil {
				t.Fatalf("Save %s failed: %v", id, err)
			}
		}
		other, _ := model.NewTask("t4", "owner-2", "/videos/t4.mp4")
		if err := repo.Save(ctx, nil, other); err != nil {
			t.Fatalf("Save t4 failed: %v", err)
		}

		tasks, err := repo.FindByUserID(ctx, nil, "owner-1")
		if err != nil {
			t.Fatalf("FindByUserID failed: %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("Expected 3 tasks, got %d", len(tasks))
		}
		for i := 1; i < len(tasks); i++ {
			if tasks[i].CreatedAt.After(tasks[i-1].CreatedAt) {
				t.Errorf("Tasks not ordered newest first")
			}
		}
	})

	t.Run("should return ErrNotFound for an unknown task", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByID(ctx, nil, "ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})
}

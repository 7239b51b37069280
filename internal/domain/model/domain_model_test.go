//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"video-subtitle-translator/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		startTime := time.Now()
		user, err := NewUser("", "testuser", 500)

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user == nil {
			t.Fatal("expected user to be non-nil, but got nil")
		}
		if user.ID == "" {
			t.Error("expected user ID to be non-empty")
		}
		if user.Username != "testuser" {
			t.Errorf("expected username to be 'testuser', but got %s", user.Username)
		}
		if user.BalanceCents != 500 {
			t.Errorf("expected balance to be 500, but got %d", user.BalanceCents)
		}
		if time.Since(startTime) > time.Second {
			t.Errorf("user.RegisteredAt timestamp is too far from current time")
		}
	})

	t.Run("should fail with empty username", func(t *testing.T) {
		user, err := NewUser("", "", 0)
		if err == nil {
			t.Fatal("expected an error for empty username, but got nil")
		}
		if user != nil {
			t.Errorf("expected user to be nil on error, but it was not")
		}
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected error to be ErrInvalidArgument, but got %T", err)
		}
	})

	t.Run("should fail with negative balance", func(t *testing.T) {
		_, err := NewUser("", "testuser", -1)
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected error to be ErrInvalidArgument, but got %v", err)
		}
	})
}

func TestUserDebit(t *testing.T) {
	t.Run("should subtract the amount from the balance", func(t *testing.T) {
		user, _ := NewUser("", "testuser", 100)
		if err := user.Debit(40); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.BalanceCents != 60 {
			t.Errorf("expected balance to be 60, but got %d", user.BalanceCents)
		}
	})

	t.Run("should reject a debit exceeding the balance", func(t *testing.T) {
		user, _ := NewUser("", "testuser", 30)
		err := user.Debit(31)
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, but got %v", err)
		}
		if user.BalanceCents != 30 {
			t.Errorf("expected balance to stay at 30, but got %d", user.BalanceCents)
		}
	})

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		user, _ := NewUser("", "testuser", 30)
		for _, amount := range []int64{0, -5} {
			if err := user.Debit(amount); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Debit(%d): expected ErrInvalidArgument, but got %v", amount, err)
			}
		}
	})
}

// --- Task Model Tests ---

func TestNewTask(t *testing.T) {
	t.Run("should create an UPLOADED task when the video path is known", func(t *testing.T) {
		task, err := NewTask("", "user-1", "/videos/input.mp4")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if task.ID == "" {
			t.Error("expected task ID to be non-empty")
		}
		if task.Status != TaskStatusUploaded {
			t.Errorf("expected status UPLOADED, but got %s", task.Status)
		}
		if task.VideoFilePath != "/videos/input.mp4" {
			t.Errorf("unexpected video path %s", task.VideoFilePath)
		}
	})

	t.Run("should create a PENDING_UPLOAD task without a video path", func(t *testing.T) {
		task, err := NewTask("", "user-1", "")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if task.Status != TaskStatusPendingUpload {
			t.Errorf("expected status PENDING_UPLOAD, but got %s", task.Status)
		}
	})

	t.Run("should fail with empty user ID", func(t *testing.T) {
		task, err := NewTask("", "", "/videos/input.mp4")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, but got %v", err)
		}
		if task != nil {
			t.Errorf("expected task to be nil on error, but it was not")
		}
	})
}

func TestTaskStatusIsTerminal(t *testing.T) {
	terminal := []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	active := []TaskStatus{
		TaskStatusPendingUpload, TaskStatusUploaded,
		TaskStatusAudioExtracting, TaskStatusAudioExtracted,
		TaskStatusTranscribing, TaskStatusTranscribed,
		TaskStatusTranslating, TaskStatusTranslated,
		TaskStatusSubtitleBurning,
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestTaskMarkFailed(t *testing.T) {
	t.Run("should record the failure reason", func(t *testing.T) {
		task, _ := NewTask("", "user-1", "/videos/input.mp4")
		task.MarkFailed("transcribe: tool exited with status 1")
		if task.Status != TaskStatusFailed {
			t.Errorf("expected status FAILED, but got %s", task.Status)
		}
		if task.ErrorMessage != "transcribe: tool exited with status 1" {
			t.Errorf("unexpected error message %q", task.ErrorMessage)
		}
	})

	t.Run("should never leave a FAILED task without a message", func(t *testing.T) {
		task, _ := NewTask("", "user-1", "/videos/input.mp4")
		task.MarkFailed("")
		if task.ErrorMessage == "" {
			t.Error("expected a placeholder error message")
		}
	})
}

func TestTaskAdvance(t *testing.T) {
	task, _ := NewTask("", "user-1", "/videos/input.mp4")
	before := task.UpdatedAt
	time.Sleep(time.Millisecond)
	task.Advance(TaskStatusAudioExtracting)
	if task.Status != TaskStatusAudioExtracting {
		t.Errorf("expected status AUDIO_EXTRACTING, but got %s", task.Status)
	}
	if !task.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to move forward")
	}
}

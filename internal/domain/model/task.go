package model

import (
	"time"

	"video-subtitle-translator/internal/domain"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPendingUpload   TaskStatus = "PENDING_UPLOAD"
	TaskStatusUploaded        TaskStatus = "UPLOADED"
	TaskStatusAudioExtracting TaskStatus = "AUDIO_EXTRACTING"
	TaskStatusAudioExtracted  TaskStatus = "AUDIO_EXTRACTED"
	TaskStatusTranscribing    TaskStatus = "TRANSCRIBING"
	TaskStatusTranscribed     TaskStatus = "TRANSCRIBED"
	TaskStatusTranslating     TaskStatus = "TRANSLATING"
	TaskStatusTranslated      TaskStatus = "TRANSLATED"
	TaskStatusSubtitleBurning TaskStatus = "SUBTITLE_BURNING"
	TaskStatusCompleted       TaskStatus = "COMPLETED"
	TaskStatusFailed          TaskStatus = "FAILED"
	TaskStatusCancelled       TaskStatus = "CANCELLED"
)

// IsTerminal reports whether no further pipeline stage may run for this status.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is the durable unit of work tracked through the whole pipeline.
// Stage output paths are populated if and only if that stage completed,
// and ErrorMessage is non-empty if and only if the task is FAILED.
type Task struct {
	ID                    string
	UserID                string
	Status                TaskStatus
	VideoFilePath         string
	AudioFilePath         string
	SrtFilePath           string
	TranslatedSrtFilePath string
	BurnedVideoFilePath   string
	Summary               string
	ErrorMessage          string
	SourceLanguage        string
	LanguageConfidence    float64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewTask(id, userID, videoPath string) (*Task, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	t := &Task{
		ID:            id,
		UserID:        userID,
		Status:        TaskStatusPendingUpload,
		VideoFilePath: videoPath,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if videoPath != "" {
		t.Status = TaskStatusUploaded
	}
	return t, nil
}

// MarkFailed moves the task into the terminal FAILED state with a reason.
func (t *Task) MarkFailed(msg string) {
	t.Status = TaskStatusFailed
	if msg == "" {
		msg = "unknown error"
	}
	t.ErrorMessage = msg
	t.UpdatedAt = time.Now()
}

func (t *Task) MarkCancelled() {
	t.Status = TaskStatusCancelled
	t.UpdatedAt = time.Now()
}

// Advance sets a new non-terminal status and refreshes the update timestamp.
func (t *Task) Advance(s TaskStatus) {
	t.Status = s
	t.UpdatedAt = time.Now()
}

func (t *Task) IsZero() bool { return t == nil || t.ID == "" }

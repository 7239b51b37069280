// File: internal/usecase/pipeline_uc.go
package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/domain/ports/adapter"
	"video-subtitle-translator/internal/domain/ports/repository"
	"video-subtitle-translator/internal/infra/logging"
	"video-subtitle-translator/internal/infra/metrics"
)

// Compile-time check
var _ PipelineUseCase = (*pipelineUC)(nil)

// DispatchLocker guards single-flight dispatch per task. The redis locker
// satisfies this; tests use an in-memory fake.
type DispatchLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

type PipelineUseCase interface {
	// Start records the application context that dispatched pipelines run
	// under. Request contexts die with their request, so runs must not
	// inherit them.
	Start(ctx context.Context)
	// Dispatch starts the task's pipeline as one unit of asynchronous work.
	// A task already running (or past UPLOADED) is rejected with
	// domain.ErrTaskNotRunnable; distinct tasks run concurrently.
	Dispatch(ctx context.Context, taskID string) error
	// Cancel moves a non-running, non-terminal task to CANCELLED.
	Cancel(ctx context.Context, taskID string) error
	// Wait blocks until every dispatched pipeline has finished.
	Wait()
}

type PipelineOptions struct {
	TargetLanguage string
	WorkDir        string
	Summarize      bool
	BurnIn         bool
}

type pipelineUC struct {
	tasks       repository.TaskRepository
	cache       TaskCache
	media       adapter.MediaToolAdapter
	translation TranslationUseCase
	billing     BillingUseCase
	locker      DispatchLocker
	opts        PipelineOptions
	log         *zerolog.Logger
	baseCtx     context.Context
	wg          sync.WaitGroup
}

// lockTTL bounds how long a crashed pipeline can keep its task locked.
const lockTTL = 4 * time.Hour

func NewPipelineUseCase(
	tasks repository.TaskRepository,
	cache TaskCache,
	media adapter.MediaToolAdapter,
	translation TranslationUseCase,
	billing BillingUseCase,
	locker DispatchLocker,
	opts PipelineOptions,
	logger *zerolog.Logger,
) *pipelineUC {
	plLog := logger.With().Str("component", "PipelineUC").Logger()
	return &pipelineUC{
		tasks:       tasks,
		cache:       cache,
		media:       media,
		translation: translation,
		billing:     billing,
		locker:      locker,
		opts:        opts,
		log:         &plLog,
	}
}

func lockKey(taskID string) string { return "pipeline:" + taskID }

func (p *pipelineUC) Start(ctx context.Context) { p.baseCtx = ctx }

func (p *pipelineUC) base() context.Context {
	if p.baseCtx != nil {
		return p.baseCtx
	}
	return context.Background()
}

func (p *pipelineUC) Dispatch(ctx context.Context, taskID string) error {
	task, err := p.tasks.FindByID(ctx, nil, taskID)
	if err != nil {
		return err
	}
	if task.Status != model.TaskStatusUploaded {
		return fmt.Errorf("task %s is %s: %w", task.ID, task.Status, domain.ErrTaskNotRunnable)
	}
	token, err := p.locker.TryLock(ctx, lockKey(task.ID), lockTTL)
	if err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { _ = p.locker.Unlock(context.Background(), lockKey(task.ID), token) }()
		p.run(p.base(), task)
	}()
	return nil
}

func (p *pipelineUC) Cancel(ctx context.Context, taskID string) error {
	task, err := p.tasks.FindByID(ctx, nil, taskID)
	if err != nil {
		return err
	}
	if task.Status.IsTerminal() {
		return fmt.Errorf("task %s is %s: %w", task.ID, task.Status, domain.ErrTaskNotRunnable)
	}
	// Holding the dispatch lock proves the pipeline is not running.
	token, err := p.locker.TryLock(ctx, lockKey(task.ID), lockTTL)
	if err != nil {
		return err
	}
	defer func() { _ = p.locker.Unlock(ctx, lockKey(task.ID), token) }()

	task.MarkCancelled()
	if err := p.persist(ctx, task); err != nil {
		return err
	}
	metrics.IncTaskFinished(string(model.TaskStatusCancelled))
	p.log.Info().Str("task_id", task.ID).Msg("task cancelled")
	return nil
}

func (p *pipelineUC) Wait() { p.wg.Wait() }

// run drives the task through the state machine. Exactly one stage executes
// at a time; the first stage error aborts the remaining pipeline and lands
// the task in FAILED with a human-readable message.
func (p *pipelineUC) run(ctx context.Context, task *model.Task) {
	ctx = logging.WithTaskID(ctx, task.ID)
	ctx = logging.WithUserID(ctx, task.UserID)
	log := *logging.With(ctx, p.log)
	log.Info().Msg("pipeline started")

	err := p.runStage(ctx, task, "extract_audio",
		model.TaskStatusAudioExtracting, model.TaskStatusAudioExtracted,
		func(ctx context.Context) error {
			audioPath, err := p.media.ExtractAudio(ctx, task.VideoFilePath)
			if err != nil {
				return err
			}
			task.AudioFilePath = audioPath
			return nil
		})
	if err == nil {
		err = p.runStage(ctx, task, "transcribe",
			model.TaskStatusTranscribing, model.TaskStatusTranscribed,
			func(ctx context.Context) error {
				res, err := p.media.Transcribe(ctx, task.AudioFilePath)
				if err != nil {
					return err
				}
				task.SrtFilePath = res.SrtFilePath
				task.SourceLanguage = res.SourceLanguage
				task.LanguageConfidence = res.LanguageConfidence
				return nil
			})
	}
	if err == nil {
		err = p.runStage(ctx, task, "translate",
			model.TaskStatusTranslating, model.TaskStatusTranslated,
			func(ctx context.Context) error {
				return p.translateStage(ctx, task, &log)
			})
	}
	if err == nil && p.opts.BurnIn {
		err = p.runStage(ctx, task, "burn_subtitles",
			model.TaskStatusSubtitleBurning, model.TaskStatusCompleted,
			func(ctx context.Context) error {
				outPath, err := p.media.BurnSubtitles(ctx, task.VideoFilePath, task.TranslatedSrtFilePath)
				if err != nil {
					return err
				}
				task.BurnedVideoFilePath = outPath
				return nil
			})
	}

	if err != nil {
		metrics.IncTaskFinished(string(model.TaskStatusFailed))
		log.Error().Err(err).Str("status", string(task.Status)).Msg("pipeline failed")
		return
	}
	metrics.IncTaskFinished(string(task.Status))
	log.Info().Str("status", string(task.Status)).Msg("pipeline finished")
}

// runStage persists the in-progress status, runs the stage synchronously,
// then persists either the success status plus stage outputs or FAILED with
// the captured error message.
func (p *pipelineUC) runStage(ctx context.Context, task *model.Task, name string, inProgress, success model.TaskStatus, stage func(ctx context.Context) error) error {
	task.Advance(inProgress)
	if err := p.persist(ctx, task); err != nil {
		return err
	}

	start := time.Now()
	err := stage(ctx)
	metrics.ObserveStageDuration(name, time.Since(start).Seconds())

	if err != nil {
		metrics.IncStage(name, "failure")
		task.MarkFailed(fmt.Sprintf("%s: %v", name, err))
		if perr := p.persist(ctx, task); perr != nil {
			p.log.Error().Err(perr).Str("task_id", task.ID).Msg("could not persist FAILED status")
		}
		return err
	}

	metrics.IncStage(name, "success")
	task.Advance(success)
	return p.persist(ctx, task)
}

// translateStage reads the transcript, runs the chunked translation engine,
// durably writes the translated artifact and only then bills the user.
// A billing failure after the artifact is written leaves the artifact in
// place; that ordering is deliberate and documented.
func (p *pipelineUC) translateStage(ctx context.Context, task *model.Task, log *zerolog.Logger) error {
	raw, err := os.ReadFile(task.SrtFilePath)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInputMissing, task.SrtFilePath)
	}

	res, err := p.translation.Translate(ctx, string(raw), p.opts.TargetLanguage)
	if err != nil {
		return err
	}

	outDir := filepath.Join(p.opts.WorkDir, "translated")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create translated dir: %w", err)
	}
	outPath := filepath.Join(outDir, filepath.Base(task.SrtFilePath))
	if err := os.WriteFile(outPath, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("write translated subtitle: %w", err)
	}
	task.TranslatedSrtFilePath = outPath

	cost := p.billing.CostCents(res.Characters)
	if cost > 0 {
		if err := p.billing.Debit(ctx, task.UserID, cost); err != nil {
			return fmt.Errorf("billing %d cents for %d characters: %w", cost, res.Characters, err)
		}
	}

	if p.opts.Summarize {
		summary, err := p.translation.Summarize(ctx, res.Text)
		if err != nil {
			// A summary is a convenience; never fail the pipeline for it.
			log.Warn().Err(err).Msg("summary generation failed")
		} else {
			task.Summary = summary
		}
	}
	return nil
}

func (p *pipelineUC) persist(ctx context.Context, task *model.Task) error {
	if err := p.tasks.Save(ctx, nil, task); err != nil {
		return fmt.Errorf("persist task %s: %w", task.ID, err)
	}
	if p.cache != nil {
		p.cache.Put(ctx, task)
	}
	return nil
}

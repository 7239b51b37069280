// File: internal/usecase/translation_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/ports/adapter"
	"video-subtitle-translator/internal/infra/logging"
	"video-subtitle-translator/internal/infra/metrics"
	"video-subtitle-translator/internal/infra/worker"
	"video-subtitle-translator/internal/subtitle"
)

// Compile-time check
var _ TranslationUseCase = (*translationUC)(nil)

type TranslationUseCase interface {
	// Translate converts raw subtitle text into the target language while
	// preserving sequence numbers, timecodes and one-to-one block
	// correspondence. Chunks are translated concurrently on the shared
	// worker pool; output order always matches input order.
	Translate(ctx context.Context, rawSrt, targetLang string) (TranslationResult, error)
	// Summarize produces a short prose summary of the subtitle content.
	Summarize(ctx context.Context, rawSrt string) (string, error)
}

type TranslationResult struct {
	Text       string // rendered subtitle text
	Entries    int
	Characters int // sum of content lengths, the billing basis
}

// chunkJob is the ephemeral unit of translation work: one chunk plus its
// future. It lives only for the duration of a single Translate call.
type chunkJob struct {
	index   int
	entries []subtitle.Entry
	done    chan chunkResult
}

type chunkResult struct {
	entries []subtitle.Entry
	err     error
}

type translationUC struct {
	ai         adapter.TextGenAdapter
	pool       *worker.Pool
	model      string
	chunkSize  int
	maxRetries int
	retryDelay time.Duration
	log        *zerolog.Logger
}

func NewTranslationUseCase(ai adapter.TextGenAdapter, pool *worker.Pool, model string, chunkSize, maxRetries int, retryDelay time.Duration, logger *zerolog.Logger) *translationUC {
	trLog := logger.With().Str("component", "TranslationUC").Logger()
	if chunkSize <= 0 {
		chunkSize = 15
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &translationUC{
		ai:         ai,
		pool:       pool,
		model:      model,
		chunkSize:  chunkSize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        &trLog,
	}
}

func (t *translationUC) Translate(ctx context.Context, rawSrt, targetLang string) (TranslationResult, error) {
	defer logging.TraceDuration(logging.With(ctx, t.log), "TranslationUC.Translate")()
	var res TranslationResult

	entries, dropped := subtitle.Parse(rawSrt)
	for _, block := range dropped {
		t.log.Warn().Str("block", firstLine(block)).Msg("dropping malformed subtitle block")
	}
	if len(entries) == 0 {
		return res, fmt.Errorf("no parseable subtitle entries: %w", domain.ErrInvalidArgument)
	}

	chunks := subtitle.Chunk(entries, t.chunkSize)
	jobs := make([]*chunkJob, len(chunks))
	for i, c := range chunks {
		jobs[i] = &chunkJob{index: i, entries: c, done: make(chan chunkResult, 1)}
	}

	for _, job := range jobs {
		job := job
		if err := t.pool.Submit(ctx, func(ctx context.Context) error {
			out, err := t.translateChunk(ctx, job, targetLang)
			job.done <- chunkResult{entries: out, err: err}
			// chunk errors surface through the future, not the pool
			return nil
		}); err != nil {
			job.done <- chunkResult{err: err}
		}
	}

	// Await futures in submission order, never completion order: positional
	// reassembly is what guarantees deterministic output ordering.
	final := make([]subtitle.Entry, 0, len(entries))
	var firstErr error
	for _, job := range jobs {
		r := <-job.done
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("chunk %d: %w", job.index, r.err)
			}
			continue
		}
		final = append(final, r.entries...)
	}
	if firstErr != nil {
		return res, firstErr
	}

	// Last-resort integrity check after translation.
	if err := subtitle.Validate(final); err != nil {
		return res, err
	}

	res.Text = subtitle.Render(final)
	res.Entries = len(final)
	res.Characters = subtitle.ContentLength(final)
	metrics.AddCharsTranslated(res.Characters)
	t.log.Info().Int("entries", res.Entries).Int("chunks", len(chunks)).
		Int("characters", res.Characters).Msg("translation assembled")
	return res, nil
}

// translateChunk runs one chunk through the API with the retry budget:
// any failure (API error, empty choices, block count mismatch) consumes an
// attempt; the budget exhausted fails the chunk's future.
func (t *translationUC) translateChunk(ctx context.Context, job *chunkJob, targetLang string) ([]subtitle.Entry, error) {
	attempts := t.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := t.translateChunkOnce(ctx, job.entries, targetLang)
		if err == nil {
			metrics.IncChunk("success")
			return out, nil
		}
		lastErr = err
		t.log.Warn().Err(err).Int("chunk", job.index).Int("attempt", attempt).Msg("chunk translation attempt failed")
		if attempt < attempts {
			metrics.IncChunkRetry()
			select {
			case <-time.After(t.retryDelay):
			case <-ctx.Done():
				metrics.IncChunk("failure")
				return nil, ctx.Err()
			}
		}
	}
	metrics.IncChunk("failure")
	return nil, lastErr
}

func (t *translationUC) translateChunkOnce(ctx context.Context, entries []subtitle.Entry, targetLang string) ([]subtitle.Entry, error) {
	prompt := buildPrompt(entries, targetLang)
	reply, err := t.ai.Chat(ctx, t.model, []adapter.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, err
	}

	blocks := subtitle.SplitBlocks(reply)
	if len(blocks) != len(entries) {
		return nil, fmt.Errorf("%w: got %d blocks, want %d", domain.ErrStructuralMismatch, len(blocks), len(entries))
	}

	out := make([]subtitle.Entry, len(entries))
	for i, orig := range entries {
		lines := strings.SplitN(blocks[i], "\n", 3)
		content := orig.Content
		if len(lines) < 3 {
			// Never drop data: a short block keeps the original content.
			t.log.Warn().Str("sequence", orig.Sequence).Msg("translated block too short, keeping original content")
		} else {
			content = lines[2]
			// Diagnostic only; content is taken regardless.
			if strings.TrimSpace(lines[0]) != orig.Sequence {
				t.log.Warn().Str("want", orig.Sequence).Str("got", strings.TrimSpace(lines[0])).Msg("sequence mismatch in reply")
			}
			if strings.TrimSpace(lines[1]) != orig.Timecode {
				t.log.Warn().Str("sequence", orig.Sequence).Msg("timecode mismatch in reply")
			}
		}
		out[i] = subtitle.Entry{Sequence: orig.Sequence, Timecode: orig.Timecode, Content: content}
	}
	return out, nil
}

func buildPrompt(entries []subtitle.Entry, targetLang string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a professional subtitle translator. Translate the following %d subtitle blocks into %s.\n", len(entries), targetLang)
	sb.WriteString("Rules:\n")
	fmt.Fprintf(&sb, "- Return exactly %d blocks separated by one blank line.\n", len(entries))
	sb.WriteString("- Keep each block's sequence number line and timecode line unchanged; translate only the text lines.\n")
	sb.WriteString("- Do not add commentary, numbering or markdown.\n\n")
	sb.WriteString(subtitle.Render(entries))
	return sb.String()
}

func (t *translationUC) Summarize(ctx context.Context, rawSrt string) (string, error) {
	entries, _ := subtitle.Parse(rawSrt)
	if len(entries) == 0 {
		return "", fmt.Errorf("nothing to summarize: %w", domain.ErrInvalidArgument)
	}
	var sb strings.Builder
	sb.WriteString("Summarize the following subtitle transcript in at most three sentences:\n\n")
	for _, e := range entries {
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
	return t.ai.Chat(ctx, t.model, []adapter.Message{{Role: "user", Content: sb.String()}})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

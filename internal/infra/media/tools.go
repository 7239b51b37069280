package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"video-subtitle-translator/internal/config"
	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.MediaToolAdapter = (*Tools)(nil)

// e.g. "Detected language 'en' with probability 0.982341"
var detectedLangRe = regexp.MustCompile(`[Dd]etected language '?([A-Za-z-]+)'? with probability ([0-9.]+)`)

// Tools shells out to ffmpeg and a whisper-style speech-to-text CLI.
// Both tools are treated as black boxes: success is exit code plus the
// presence of the expected output artifact, never stdout content.
type Tools struct {
	cfg    config.MediaConfig
	runner commandRunner
	log    *zerolog.Logger
}

func NewTools(cfg config.MediaConfig, logger *zerolog.Logger) *Tools {
	toolsLog := logger.With().Str("component", "MediaTools").Logger()
	return &Tools{cfg: cfg, runner: &execRunner{}, log: &toolsLog}
}

// ExtractAudio converts the video into a mono 192kbps MP3 next to the
// configured work dir. It blocks until ffmpeg exits; no timeout is applied.
func (t *Tools) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInputMissing, videoPath)
	}
	outDir := filepath.Join(t.cfg.WorkDir, "audio")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	audioPath := filepath.Join(outDir, baseName(videoPath)+".mp3")

	res, err := t.runner.Run(ctx, t.cfg.FFmpegPath,
		"-y", "-i", videoPath, "-vn", "-ac", "1", "-b:a", "192k", audioPath)
	if err != nil {
		t.log.Error().Int("exit", res.ExitCode).Str("video", videoPath).Msg("ffmpeg extract failed")
		return "", fmt.Errorf("%w: ffmpeg exit %d", domain.ErrExternalTool, res.ExitCode)
	}
	t.log.Debug().Str("audio", audioPath).Msg("audio extracted")
	return audioPath, nil
}

// Transcribe runs the speech-to-text CLI with a computed deadline
// (fixed base duration times the configured multiplier). The tool writes
// <audio base name>.srt into the transcript dir; an absent or empty file
// after a clean exit still fails the stage.
func (t *Tools) Transcribe(ctx context.Context, audioPath string) (adapter.TranscribeResult, error) {
	var out adapter.TranscribeResult
	if _, err := os.Stat(audioPath); err != nil {
		return out, fmt.Errorf("%w: %s", domain.ErrInputMissing, audioPath)
	}
	outDir := filepath.Join(t.cfg.WorkDir, "transcripts")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return out, fmt.Errorf("create transcript dir: %w", err)
	}

	timeout := time.Duration(float64(t.cfg.TimeoutBase) * t.cfg.TimeoutMultiplier)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		audioPath,
		"--model", t.cfg.WhisperModel,
		"--device", t.cfg.WhisperDevice,
		"--output_dir", outDir,
		"--output_format", "srt",
	}
	if t.cfg.VADFilter {
		args = append(args, "--vad_filter", "True")
	}

	res, err := t.runner.Run(ctx, t.cfg.WhisperPath, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return out, fmt.Errorf("%w: transcription timed out after %s", domain.ErrExternalTool, timeout)
		}
		t.log.Error().Int("exit", res.ExitCode).Str("audio", audioPath).Msg("whisper failed")
		return out, fmt.Errorf("%w: whisper exit %d", domain.ErrExternalTool, res.ExitCode)
	}

	srtPath := filepath.Join(outDir, baseName(audioPath)+".srt")
	info, err := os.Stat(srtPath)
	if err != nil {
		return out, fmt.Errorf("%w: transcript not produced at %s", domain.ErrExternalTool, srtPath)
	}
	if info.Size() == 0 {
		return out, fmt.Errorf("%w: transcript is empty at %s", domain.ErrExternalTool, srtPath)
	}

	out.SrtFilePath = srtPath
	out.SourceLanguage, out.LanguageConfidence = scrapeDetectedLanguage(res.Output)
	t.log.Debug().Str("srt", srtPath).Str("lang", out.SourceLanguage).Msg("transcribed")
	return out, nil
}

// BurnSubtitles renders the subtitle file onto the video with ffmpeg's
// subtitles filter. Same contract as ExtractAudio.
func (t *Tools) BurnSubtitles(ctx context.Context, videoPath, srtPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInputMissing, videoPath)
	}
	if _, err := os.Stat(srtPath); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInputMissing, srtPath)
	}
	outDir := filepath.Join(t.cfg.WorkDir, "burned")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create burn dir: %w", err)
	}
	outPath := filepath.Join(outDir, baseName(videoPath)+".mp4")

	res, err := t.runner.Run(ctx, t.cfg.FFmpegPath,
		"-y", "-i", videoPath, "-vf", "subtitles="+srtPath, outPath)
	if err != nil {
		t.log.Error().Int("exit", res.ExitCode).Str("video", videoPath).Msg("ffmpeg burn failed")
		return "", fmt.Errorf("%w: ffmpeg exit %d", domain.ErrExternalTool, res.ExitCode)
	}
	return outPath, nil
}

// scrapeDetectedLanguage is best-effort diagnostics; it never gates success.
func scrapeDetectedLanguage(output string) (string, float64) {
	m := detectedLangRe.FindStringSubmatch(output)
	if m == nil {
		return "", 0
	}
	conf, _ := strconv.ParseFloat(m[2], 64)
	return m[1], conf
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

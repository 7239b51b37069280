package adapter

import "context"

// TranscribeResult carries the artifact produced by the speech-to-text tool
// plus best-effort language detection scraped from its output.
type TranscribeResult struct {
	SrtFilePath        string
	SourceLanguage     string
	LanguageConfidence float64
}

// MediaToolAdapter is the port for external audio/video tooling.
// All operations block until the external process exits (or the context
// deadline terminates it) and judge success only by exit code plus the
// existence and non-emptiness of the expected output artifact.
type MediaToolAdapter interface {
	ExtractAudio(ctx context.Context, videoPath string) (audioPath string, err error)
	Transcribe(ctx context.Context, audioPath string) (TranscribeResult, error)
	BurnSubtitles(ctx context.Context, videoPath, srtPath string) (outPath string, err error)
}

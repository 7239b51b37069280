// Package subtitle parses, chunks, renders and validates SRT-style
// line-oriented subtitle text. It is pure and does no I/O.
package subtitle

import (
	"fmt"
	"regexp"
	"strings"

	"video-subtitle-translator/internal/domain"
)

var (
	seqRe      = regexp.MustCompile(`^\d+$`)
	timecodeRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)
	blockSepRe = regexp.MustCompile(`\n\s*\n`)
)

// Entry is one caption block. Immutable once parsed.
type Entry struct {
	Sequence string // decimal string, e.g. "12"
	Timecode string // "HH:MM:SS,mmm --> HH:MM:SS,mmm"
	Content  string // one or more lines joined with "\n"
}

// Parse converts raw subtitle text into ordered entries. Blocks with fewer
// than three components (sequence, timecode, content) are dropped and
// reported via the second return value; a bad block never fails the file.
func Parse(raw string) (entries []Entry, dropped []string) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, block := range SplitBlocks(raw) {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			dropped = append(dropped, block)
			continue
		}
		entries = append(entries, Entry{
			Sequence: strings.TrimSpace(lines[0]),
			Timecode: strings.TrimSpace(lines[1]),
			Content:  strings.Join(lines[2:], "\n"),
		})
	}
	return entries, dropped
}

// SplitBlocks splits text on blank lines, skipping empty blocks.
func SplitBlocks(text string) []string {
	var blocks []string
	for _, b := range blockSepRe.Split(strings.TrimSpace(text), -1) {
		b = strings.Trim(b, "\n")
		if strings.TrimSpace(b) == "" {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Chunk partitions entries into order-preserving slices of at most size
// entries; the last chunk may be smaller. Chunks alias the input slice.
func Chunk(entries []Entry, size int) [][]Entry {
	if size <= 0 || len(entries) == 0 {
		return nil
	}
	chunks := make([][]Entry, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

// Render serializes entries back into subtitle text, one block per entry,
// blocks separated by a blank line.
func Render(entries []Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Sequence)
		sb.WriteString("\n")
		sb.WriteString(e.Timecode)
		sb.WriteString("\n")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Validate is the last-resort integrity check run after translation:
// every sequence must be pure digits, every timecode must match the fixed
// format, and content must be non-blank.
func Validate(entries []Entry) error {
	for i, e := range entries {
		if !seqRe.MatchString(e.Sequence) {
			return fmt.Errorf("entry %d: bad sequence %q: %w", i, e.Sequence, domain.ErrValidationFailed)
		}
		if !timecodeRe.MatchString(e.Timecode) {
			return fmt.Errorf("entry %d: bad timecode %q: %w", i, e.Timecode, domain.ErrValidationFailed)
		}
		if strings.TrimSpace(e.Content) == "" {
			return fmt.Errorf("entry %d: blank content: %w", i, domain.ErrValidationFailed)
		}
	}
	return nil
}

// ContentLength sums the content string lengths across entries.
// This is the character count used for billing.
func ContentLength(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += len([]rune(e.Content))
	}
	return n
}

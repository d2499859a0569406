package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Chunk is a bounded contiguous slice of a document's cleaned text. Start
// and End are rune offsets into the cleaned text, so End-Start never exceeds
// the configured chunk size. Chunks are immutable once produced.
type Chunk struct {
	Content  string
	ChunkID  int
	Start    int
	End      int
	Metadata map[string]string
}

// Chunker splits document text into overlapping, bounded-length chunks,
// preferring to cut at sentence boundaries. Chunking is deterministic:
// identical input and parameters always yield identical chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. size must be positive and overlap must be smaller
// than size; out-of-range values are clamped.
func New(size, overlap int) *Chunker {
	if size < 1 {
		size = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk cleans the text and splits it into overlapping chunks. The window
// walks runes, not bytes, so cuts never split a multibyte character. The
// metadata map is attached to every chunk as-is.
func (c *Chunker) Chunk(text string, metadata map[string]string) []Chunk {
	cleaned := []rune(Clean(text))
	if len(cleaned) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	length := len(cleaned)

	for start < length {
		end := start + c.size
		if end < length {
			// Prefer ending on a sentence boundary within the window.
			if cut := lastSentenceEnd(cleaned, start, end); cut > start {
				end = cut
			}
		} else {
			end = length
		}

		content := strings.TrimSpace(string(cleaned[start:end]))
		if content != "" {
			chunks = append(chunks, Chunk{
				Content:  content,
				ChunkID:  len(chunks),
				Start:    start,
				End:      end,
				Metadata: metadata,
			})
		}

		if end >= length {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Sentence cut landed too close to the window start; advance
			// without overlap so the walk always makes progress.
			next = end
		}
		start = next
	}

	return chunks
}

// Clean normalizes whitespace and strips control and other non-printable
// characters, leaving single-space separated printable text.
func Clean(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	lastSpace := true
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(sb.String())
}

// lastSentenceEnd returns the rune offset one past the last sentence-terminal
// punctuation ('.', '!' or '?' followed by a space) in text[start:end),
// or -1 if there is none.
func lastSentenceEnd(text []rune, start, end int) int {
	window := string(text[start:end])
	best := -1
	for _, term := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, term); i > best {
			best = i
		}
	}
	if best < 0 {
		return -1
	}
	// The terminators are ASCII, so the byte offset converts cleanly to a
	// rune offset.
	return start + utf8.RuneCountInString(window[:best]) + 1
}

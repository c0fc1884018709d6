// Package chunker splits extracted document text into translation-safe
// segments sized for the remote API's per-request byte limit. The split
// is lossless: every byte of the input, separators included, ends up in
// exactly one segment, so concatenating segment texts in index order
// reproduces the input exactly.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxSegmentBytes is the default per-segment size limit.
	// The Translate v2 API caps request bodies well above this; the
	// margin leaves room for the JSON envelope.
	DefaultMaxSegmentBytes = 4000
)

// Segment is one contiguous slice of the source text. Index is assigned
// at split time and is the sole ordering key for reassembly.
type Segment struct {
	Index int
	Text  string
}

// ByteLen returns the size of the segment text in bytes.
func (s Segment) ByteLen() int {
	return len(s.Text)
}

// Split cuts text into segments each at most maxBytes long. Cuts are
// attempted (in order of preference) at:
//  1. Paragraph boundaries (\n\n or \r\n\r\n)
//  2. Sentence-ending punctuation (. ! ?) followed by whitespace
//  3. The last whitespace before the limit
//  4. The last rune boundary within the limit
//
// A single rune longer than maxBytes is emitted whole rather than torn
// apart, so progress is guaranteed for any maxBytes ≥ 1. Empty input
// yields zero segments. Whitespace-only segments are kept: dropping
// them would break index continuity and lossless reconstruction.
// If maxBytes ≤ 0, DefaultMaxSegmentBytes is used.
func Split(text string, maxBytes int) []Segment {
	if text == "" {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSegmentBytes
	}

	var segments []Segment
	remaining := text

	for len(remaining) > maxBytes {
		cut := findCut(remaining, maxBytes)
		segments = append(segments, Segment{Index: len(segments), Text: remaining[:cut]})
		remaining = remaining[cut:]
	}

	segments = append(segments, Segment{Index: len(segments), Text: remaining})
	return segments
}

// Join reassembles segment texts in slice order. Callers are expected
// to pass segments sorted by Index; Split returns them that way.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// findCut returns the byte offset at which to cut text, at most
// maxBytes unless even the first rune is longer than that.
func findCut(text string, maxBytes int) int {
	// Largest prefix that fits and ends on a rune boundary.
	limit := maxBytes
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	if limit == 0 {
		// First rune alone exceeds maxBytes; emit it whole.
		_, size := utf8.DecodeRuneInString(text)
		return size
	}
	candidate := text[:limit]

	// 1. Paragraph boundary — cut after the blank line so the separator
	// stays with the segment that precedes it.
	if idx := strings.LastIndex(candidate, "\r\n\r\n"); idx > 0 {
		return idx + 4
	}
	if idx := strings.LastIndex(candidate, "\n\n"); idx > 0 {
		return idx + 2
	}

	// 2. Sentence-ending punctuation followed by whitespace.
	if idx := lastSentenceEnd(candidate); idx > 0 {
		return idx
	}

	// 3. Whitespace word boundary — the space ends the current segment.
	if idx := lastWhitespace(candidate); idx > 0 {
		return idx
	}

	// 4. Hard cut at the rune boundary.
	return limit
}

// lastSentenceEnd returns the offset just past the last '.', '!' or '?'
// that is followed by whitespace within s, or 0 if there is none.
func lastSentenceEnd(s string) int {
	best := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '.' || r == '!' || r == '?' {
			next, nsize := utf8.DecodeRuneInString(s[i+size:])
			if nsize > 0 && unicode.IsSpace(next) {
				best = i + size
			}
		}
		i += size
	}
	return best
}

// lastWhitespace returns the offset just past the last whitespace rune
// in s, or 0 if s contains none.
func lastWhitespace(s string) int {
	best := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			best = i + size
		}
		i += size
	}
	return best
}

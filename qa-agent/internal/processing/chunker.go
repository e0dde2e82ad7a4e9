package processing

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Default chunk geometry, in bytes.
const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 300
)

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// ChunkText splits into paragraph chunks and limits size.
func ChunkText(text string) []string {
	return ChunkTextSize(text, DefaultChunkSize, DefaultChunkOverlap)
}

// ChunkTextSize is ChunkText with an explicit chunk size and overlap. A
// non-positive size selects DefaultChunkSize; overlap is clamped into
// [0, size).
func ChunkTextSize(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// further split very long paragraphs into fixed windows with overlap
		out = append(out, splitLong(p, size, overlap)...)
	}
	return out
}

// splitLong cuts s into windows of at most max bytes that start and end on
// rune boundaries, so every chunk stays valid UTF-8.
func splitLong(s string, max, overlap int) []string {
	if len(s) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(s); {
		end := min(i+max, len(s))
		for end > i && end < len(s) && !utf8.RuneStart(s[end]) {
			end--
		}
		if end == i {
			// window narrower than the rune at i
			_, n := utf8.DecodeRuneInString(s[i:])
			end = i + n
		}
		if chunk := strings.TrimSpace(s[i:end]); chunk != "" {
			res = append(res, chunk)
		}
		if end == len(s) {
			break
		}
		next := end - overlap
		for next > i && !utf8.RuneStart(s[next]) {
			next--
		}
		if next <= i {
			next = end
		}
		i = next
	}
	return res
}

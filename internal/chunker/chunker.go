package chunker

import (
	"fmt"
	"strings"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

// separators are tried in order: prefer the largest natural boundary and
// only fall back to a finer one when a piece still exceeds the chunk size.
var separators = []string{"\n\n", "\n", ".", " "}

// Splitter splits text into overlapping chunks along natural boundaries.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a splitter. Overlap must be smaller than size.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, size), got %d with size %d", overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split chunks text in document order, tagging every chunk with source.
// Empty chunks are dropped. A fragment with no splittable boundary may
// exceed the chunk size by the length of that one unsplit token.
func (s *Splitter) Split(text, source string) []domain.Chunk {
	pieces := s.fragment(text, separators)
	merged := s.merge(pieces)

	chunks := make([]domain.Chunk, 0, len(merged))
	for _, m := range merged {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Content:  m,
			Metadata: domain.ChunkMetadata{Source: source},
		})
	}
	return chunks
}

// fragment recursively breaks text into pieces no longer than the chunk
// size, keeping each separator attached to the piece it terminates so that
// merging is plain concatenation.
func (s *Splitter) fragment(text string, seps []string) []string {
	if len(text) <= s.size {
		return []string{text}
	}

	sep := ""
	var rest []string
	for i, c := range seps {
		if strings.Contains(text, c) {
			sep = c
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		// No boundary left; emit the oversize token as-is.
		return []string{text}
	}

	var out []string
	for _, p := range splitAfter(text, sep) {
		if len(p) <= s.size {
			out = append(out, p)
		} else {
			out = append(out, s.fragment(p, rest)...)
		}
	}
	return out
}

// merge greedily packs pieces into chunks of at most size characters,
// carrying over up to overlap characters of trailing pieces into the next
// chunk to preserve cross-chunk context.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur []string
	curLen := 0

	for _, p := range pieces {
		if curLen > 0 && curLen+len(p) > s.size {
			chunks = append(chunks, strings.Join(cur, ""))
			for len(cur) > 0 && (curLen > s.overlap || curLen+len(p) > s.size) {
				curLen -= len(cur[0])
				cur = cur[1:]
			}
		}
		cur = append(cur, p)
		curLen += len(p)
	}
	if curLen > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}
	return chunks
}

// splitAfter splits text by sep, keeping sep at the end of each piece.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	// SplitAfter can leave a trailing empty piece when text ends with sep.
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

package llm

import (
	"context"
	"strings"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

// FallbackMarker prefixes every answer produced without a generation
// backend, so callers can detect degraded mode by checking the prefix.
const FallbackMarker = "[LOCAL-FALLBACK] "

const (
	fallbackMaxChunks     = 3
	fallbackMaxChunkChars = 500
)

// FallbackGenerator answers by concatenating retrieved text instead of
// calling a model. It is the resolved backend when no credentials are
// configured; useful for offline development.
type FallbackGenerator struct{}

// NewFallbackGenerator creates the no-backend generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate concatenates the first chunks of retrieved text behind the
// fallback marker. The answer uses at most fallbackMaxChunks chunks, but
// Sources still covers every input chunk.
func (*FallbackGenerator) Generate(_ context.Context, query string, chunks []domain.RetrievedChunk) (domain.AnswerResult, error) {
	var parts []string
	for i, c := range chunks {
		if i == fallbackMaxChunks {
			break
		}
		text := c.Content
		if len(text) > fallbackMaxChunkChars {
			text = text[:fallbackMaxChunkChars]
		}
		parts = append(parts, text)
	}

	answer := FallbackMarker
	if len(parts) > 0 {
		answer += strings.Join(parts, "\n\n")
	} else {
		answer += "No generation backend is configured and no relevant text was found for: " + query
	}

	return domain.AnswerResult{Answer: answer, Sources: Sources(chunks)}, nil
}

// Package llm builds grounding prompts and generates answers through a
// configured backend, with a local fallback when none is available.
package llm

import (
	"fmt"
	"strings"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

const (
	systemInstruction = "You are an assistant that answers queries using the provided sources. Cite the source number(s) you used at the end of the answer in square brackets."

	// maxExcerptChars bounds how much of each chunk enters the prompt.
	maxExcerptChars = 800
)

// BuildPrompt renders the grounding prompt sent to the generation backend.
// It is deterministic: the same query and chunks always produce the same
// prompt. Each chunk contributes at most maxExcerptChars characters with
// newlines collapsed to spaces, labeled by its 1-based position and source.
func BuildPrompt(query string, chunks []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for i, c := range chunks {
		excerpt := c.Content
		if len(excerpt) > maxExcerptChars {
			excerpt = excerpt[:maxExcerptChars]
		}
		excerpt = strings.ReplaceAll(excerpt, "\n", " ")

		source := c.Metadata.Source
		if source == "" {
			source = fmt.Sprintf("chunk_%d", i+1)
		}
		blocks = append(blocks, fmt.Sprintf("Source %d (%s):\n%s", i+1, source, excerpt))
	}

	var b strings.Builder
	b.WriteString(systemInstruction)
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\nAnswer concisely and include citations.")
	return b.String()
}

// Sources lists each chunk's provenance label in input order. Entries may be
// empty strings when a chunk carries no source.
func Sources(chunks []domain.RetrievedChunk) []string {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Metadata.Source
	}
	return out
}

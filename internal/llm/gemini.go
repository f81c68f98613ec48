package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator answers through the Google Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate builds the grounding prompt and calls the configured model.
func (g *GeminiGenerator) Generate(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.AnswerResult, error) {
	prompt := BuildPrompt(query, chunks)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return domain.AnswerResult{}, &GenerationError{
			Model:           g.model,
			Err:             err,
			AvailableModels: g.listModels(ctx),
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.AnswerResult{}, &GenerationError{
			Model: g.model,
			Err:   errors.New("no answer returned"),
		}
	}

	answer := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	return domain.AnswerResult{Answer: answer, Sources: Sources(chunks)}, nil
}

// listModels fetches model names for error diagnostics. Best effort: any
// failure yields nil.
func (g *GeminiGenerator) listModels(ctx context.Context) []string {
	page, err := g.client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		return nil
	}
	var names []string
	for _, m := range page.Items {
		names = append(names, m.Name)
	}
	return names
}

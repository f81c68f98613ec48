package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIGenerator answers through an OpenAI-compatible chat completions
// endpoint. Works with the hosted API and with local servers that speak the
// same protocol.
type OpenAIGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIGenerator creates an OpenAI-compatible generator.
func NewOpenAIGenerator(baseURL, apiKey, model string) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate builds the grounding prompt and calls the configured model.
func (g *OpenAIGenerator) Generate(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.AnswerResult, error) {
	prompt := BuildPrompt(query, chunks)

	body, err := json.Marshal(chatCompletionRequest{
		Model:    g.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.AnswerResult{}, g.generationError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return domain.AnswerResult{}, g.generationError(ctx, err)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return domain.AnswerResult{}, g.generationError(ctx, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(completion.Choices) == 0 {
		return domain.AnswerResult{}, g.generationError(ctx, fmt.Errorf("no answer returned"))
	}

	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	return domain.AnswerResult{Answer: answer, Sources: Sources(chunks)}, nil
}

func (g *OpenAIGenerator) generationError(ctx context.Context, cause error) *GenerationError {
	return &GenerationError{
		Model:           g.model,
		Err:             cause,
		AvailableModels: g.listModels(ctx),
	}
}

// listModels fetches model ids for error diagnostics. Best effort: any
// failure yields nil.
func (g *OpenAIGenerator) listModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models", nil)
	if err != nil {
		return nil
	}
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil
	}

	var names []string
	for _, m := range list.Data {
		names = append(names, m.ID)
	}
	return names
}

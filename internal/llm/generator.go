package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

// Generator produces an answer from a query and its retrieved chunks.
type Generator interface {
	Generate(ctx context.Context, query string, chunks []domain.RetrievedChunk) (domain.AnswerResult, error)
}

// Supported generation providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds generation backend configuration.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// GenerationError reports a failed backend call with enough detail for an
// operator to fix the configuration: the failing model name, the cause, and
// a best-effort list of models the backend currently offers.
type GenerationError struct {
	Model           string
	Err             error
	AvailableModels []string
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("generation with model %q failed: %v", e.Model, e.Err)
	if len(e.AvailableModels) > 0 {
		msg += "; available models: " + strings.Join(e.AvailableModels, ", ")
	}
	return msg
}

func (e *GenerationError) Unwrap() []error {
	return []error{domain.ErrGeneration, e.Err}
}

// Resolve picks the generation backend once at startup. The probe order is
// gemini, then an OpenAI-compatible endpoint, then the local fallback. The
// decision holds for the process lifetime and never changes per request.
func Resolve(ctx context.Context, cfg Config, logger *zap.Logger) Generator {
	if (cfg.Provider == ProviderGemini || cfg.Provider == "") && cfg.APIKey != "" {
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model)
		if err == nil {
			logger.Info("generation backend resolved",
				zap.String("backend", ProviderGemini),
				zap.String("model", g.model))
			return g
		}
		logger.Warn("gemini backend unavailable", zap.Error(err))
	}

	if cfg.Provider == ProviderOpenAI && (cfg.APIKey != "" || cfg.BaseURL != "") {
		g := NewOpenAIGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model)
		logger.Info("generation backend resolved",
			zap.String("backend", ProviderOpenAI),
			zap.String("model", g.model))
		return g
	}

	logger.Warn("no generation backend configured, answers will use the local fallback")
	return NewFallbackGenerator()
}

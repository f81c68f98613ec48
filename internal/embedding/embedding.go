// Package embedding maps text to fixed-dimension vectors for similarity
// search.
package embedding

import (
	"context"
	"errors"
	"math"
)

// Embedder converts a text string into a numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider is the enumeration of supported embedding providers.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderStub   Provider = "stub"
)

// Config holds embedding provider configuration.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string
}

// New creates an embedder for the configured provider.
func New(ctx context.Context, cfg *Config) (Embedder, error) {
	if cfg == nil {
		return nil, errors.New("embedding config is required")
	}
	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiEmbedder(ctx, cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case ProviderStub:
		return NewStubEmbedder(64), nil
	default:
		return nil, errors.New("unsupported embedding provider: " + string(cfg.Provider))
	}
}

// StubEmbedder produces deterministic vectors without network access. It is
// meant for tests and offline development: identical texts map to identical
// vectors, different texts usually do not.
type StubEmbedder struct {
	dim int
}

// NewStubEmbedder creates a stub embedder with the given dimension.
func NewStubEmbedder(dim int) *StubEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &StubEmbedder{dim: dim}
}

// Embed returns an L2-normalized vector derived from the text bytes.
func (s *StubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float64, s.dim)
	for i, r := range text {
		v[i%s.dim] += float64(r)
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	out := make([]float32, s.dim)
	if norm == 0 {
		return out, nil
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out, nil
}

package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewProviderDispatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		cfg       *Config
		expectErr bool
	}{
		{"nil config", nil, true},
		{"stub", &Config{Provider: ProviderStub}, false},
		{"openai", &Config{Provider: ProviderOpenAI, APIKey: "k"}, false},
		{"unknown", &Config{Provider: Provider("bogus")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(ctx, tt.cfg)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e == nil {
				t.Fatal("expected embedder instance")
			}
		})
	}
}

func TestStubEmbedderDeterministic(t *testing.T) {
	e := NewStubEmbedder(32)
	ctx := context.Background()

	a1, err := e.Embed(ctx, "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	a2, _ := e.Embed(ctx, "hello world")
	b, _ := e.Embed(ctx, "a completely different text")

	if len(a1) != 32 {
		t.Fatalf("expected dimension 32, got %d", len(a1))
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("identical texts produced different vectors at %d", i)
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}

	var norm float64
	for _, x := range a1 {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1) > 1e-3 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

func TestStubEmbedderEmptyText(t *testing.T) {
	e := NewStubEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != 16 {
		t.Fatalf("expected dimension 16, got %d", len(v))
	}
	for i, x := range v {
		if x != 0 {
			t.Errorf("expected zero vector for empty text, got %f at %d", x, i)
		}
	}
}

func TestOpenAIEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		var body struct {
			Input string `json:"input"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if body.Model != "test-model" {
			t.Errorf("unexpected model %q", body.Model)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"embedding": []float32{0.1, 0.2, 0.3}}},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL, "test-key", "test-model")
	v, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != 3 || v[0] != 0.1 {
		t.Errorf("unexpected vector %v", v)
	}
}

func TestOpenAIEmbedderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(srv.URL, "k", "m")
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

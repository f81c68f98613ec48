package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/chunker"
	"github.com/puran2003gupta/ragassist/internal/config"
	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/embedding"
	"github.com/puran2003gupta/ragassist/internal/extract"
)

type captureStore struct {
	chunks  []domain.Chunk
	vectors [][]float32
	err     error
}

func (c *captureStore) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	c.chunks = append(c.chunks, chunks...)
	c.vectors = append(c.vectors, vectors...)
	return c.err
}

func newIngestService(t *testing.T, store *captureStore) *IngestService {
	t.Helper()
	cfg := testConfig()
	cfg.Storage = config.StorageConfig{Documents: t.TempDir()}

	splitter, err := chunker.NewSplitter(1200, 200)
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	return NewIngestService(cfg, splitter, embedding.NewStubEmbedder(16), store,
		extract.NewWebExtractor(5*time.Second), zap.NewNop())
}

func TestIngestURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Interesting article text.</p><script>junk()</script></body></html>"))
	}))
	defer srv.Close()

	store := &captureStore{}
	svc := newIngestService(t, store)

	count, err := svc.IngestURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("IngestURL failed: %v", err)
	}
	if count != len(store.chunks) {
		t.Errorf("reported %d chunks, stored %d", count, len(store.chunks))
	}
	if count == 0 {
		t.Fatal("expected at least one chunk")
	}
	if store.chunks[0].Metadata.Source != "URL: "+srv.URL {
		t.Errorf("unexpected source label %q", store.chunks[0].Metadata.Source)
	}
	if !strings.Contains(store.chunks[0].Content, "Interesting article text.") {
		t.Errorf("article text not indexed: %q", store.chunks[0].Content)
	}
	if strings.Contains(store.chunks[0].Content, "junk()") {
		t.Errorf("script content leaked into chunk: %q", store.chunks[0].Content)
	}
	if len(store.vectors) != len(store.chunks) {
		t.Errorf("expected one vector per chunk: %d vs %d", len(store.vectors), len(store.chunks))
	}
}

func TestIngestURLExtractionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	svc := newIngestService(t, &captureStore{})
	if _, err := svc.IngestURL(context.Background(), srv.URL); !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}

func TestIngestURLStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>some text to index</p>"))
	}))
	defer srv.Close()

	svc := newIngestService(t, &captureStore{err: errors.New("disk full")})
	if _, err := svc.IngestURL(context.Background(), srv.URL); err == nil {
		t.Error("expected error when the store rejects chunks")
	}
}

func TestIngestPDFMissingFile(t *testing.T) {
	svc := newIngestService(t, &captureStore{})

	_, err := svc.IngestPDF(context.Background(), "broken.pdf", strings.NewReader("not a pdf"))
	if !errors.Is(err, domain.ErrExtraction) {
		t.Errorf("expected ErrExtraction for invalid pdf bytes, got %v", err)
	}
}

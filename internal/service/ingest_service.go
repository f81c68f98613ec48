package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/puran2003gupta/ragassist/internal/chunker"
	"github.com/puran2003gupta/ragassist/internal/config"
	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/embedding"
	"github.com/puran2003gupta/ragassist/internal/extract"
)

// Upserter is the write side of the vector store.
type Upserter interface {
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
}

// IngestService turns documents into indexed chunks: extract, split, embed,
// store. Re-ingesting a document indexes its chunks again; there is no
// dedup against earlier ingests.
type IngestService struct {
	cfg      *config.Config
	splitter *chunker.Splitter
	embedder embedding.Embedder
	store    Upserter
	web      *extract.WebExtractor
	logger   *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	cfg *config.Config,
	splitter *chunker.Splitter,
	embedder embedding.Embedder,
	store Upserter,
	web *extract.WebExtractor,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		cfg:      cfg,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		web:      web,
		logger:   logger,
	}
}

// IngestPDF saves the uploaded file under the document storage directory,
// extracts its text, and indexes the resulting chunks. Returns the chunk
// count.
func (s *IngestService) IngestPDF(ctx context.Context, filename string, file io.Reader) (int, error) {
	if err := os.MkdirAll(s.cfg.Storage.Documents, 0755); err != nil {
		return 0, fmt.Errorf("failed to create storage directory: %w", err)
	}

	name := filepath.Base(filename)
	path := filepath.Join(s.cfg.Storage.Documents, name)
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}

	text, pages, err := extract.PDF(path)
	if err != nil {
		return 0, err
	}
	s.logger.Info("pdf extracted",
		zap.String("file", name),
		zap.Int("pages", pages),
		zap.Int("text_chars", len(text)))

	return s.index(ctx, text, "PDF: "+name)
}

// IngestURL fetches the page at url and indexes its text. Returns the chunk
// count.
func (s *IngestService) IngestURL(ctx context.Context, url string) (int, error) {
	text, err := s.web.Extract(ctx, url)
	if err != nil {
		return 0, err
	}
	s.logger.Info("url extracted",
		zap.String("url", url),
		zap.Int("text_chars", len(text)))

	return s.index(ctx, text, "URL: "+url)
}

func (s *IngestService) index(ctx context.Context, text, source string) (int, error) {
	chunks := s.splitter.Split(text, source)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		v, err := s.embedder.Embed(ctx, c.Content)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %d of %d: %w", i+1, len(chunks), err)
		}
		vectors[i] = v
	}

	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	s.logger.Info("document indexed",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Package vectorstore persists chunk embeddings in SQLite and answers
// nearest-neighbor queries by brute-force cosine similarity. Good for the
// corpus sizes a single assistant instance handles; swap for a dedicated
// vector database beyond that.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/puran2003gupta/ragassist/internal/domain"
)

// Store is a SQLite-backed vector store. Writes are serialized; reads run
// concurrently.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// New opens (or creates) the vector store under dir.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "./data/vectors"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector store directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize vector schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source TEXT,
			embedding BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Upsert stores chunks with their embeddings in one transaction. Chunks
// carry no identity, so re-ingesting a document inserts duplicates; that is
// a documented property, not a bug.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, content, source, embedding)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		embeddingJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("failed to encode embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), chunk.Content, chunk.Metadata.Source, embeddingJSON); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	return tx.Commit()
}

// Search returns the topK most similar chunks, best match first. Score is
// cosine similarity, so higher means more relevant. An empty store yields an
// empty result, never an error.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT content, source, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var content string
		var source sql.NullString
		var embeddingJSON []byte

		if err := rows.Scan(&content, &source, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}

		var embedded []float32
		if err := json.Unmarshal(embeddingJSON, &embedded); err != nil {
			continue // skip corrupted rows
		}

		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				Content:  content,
				Metadata: domain.ChunkMetadata{Source: source.String},
			},
			Score: cosineSimilarity(vector, embedded),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Package retrieve turns a query string into the top-k most relevant
// stored chunks.
package retrieve

import (
	"context"
	"fmt"

	"github.com/puran2003gupta/ragassist/internal/domain"
	"github.com/puran2003gupta/ragassist/internal/embedding"
)

// DefaultK is the retrieval depth used when the caller passes k <= 0.
const DefaultK = 4

// Searcher is the nearest-neighbor capability of the vector store.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error)
}

// Retriever embeds queries and searches the vector store. Results are
// ordered best match first; scores follow the higher-is-more-relevant
// convention established at this boundary.
type Retriever struct {
	embedder embedding.Embedder
	store    Searcher
}

// New creates a retriever.
func New(embedder embedding.Embedder, store Searcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to k chunks relevant to query. Fewer than k stored
// chunks yields all of them; an empty store yields an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = DefaultK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrRetrieval, err)
	}

	results, err := r.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: searching store: %v", domain.ErrRetrieval, err)
	}
	return results, nil
}

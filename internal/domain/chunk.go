package domain

// ChunkMetadata carries provenance for a chunk.
type ChunkMetadata struct {
	Source string `json:"source"`
}

// Chunk is a bounded slice of source text with provenance metadata.
// Chunks have no identity beyond content plus metadata; duplicates are allowed.
type Chunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// RetrievedChunk is a chunk returned from similarity search.
// Score convention is fixed at the retriever boundary: higher is more
// relevant. Scores are not comparable across embedding backends.
type RetrievedChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// AnswerResult is the normalized output of the answer generator.
// Sources are best-effort provenance, not a 1:1 citation guarantee.
type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

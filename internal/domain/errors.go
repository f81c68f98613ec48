package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrExtraction indicates the source document could not be read or fetched
	ErrExtraction = errors.New("document extraction failed")
	// ErrRetrieval indicates a vector store or embedding failure during ask;
	// callers recover by proceeding with zero retrieved chunks
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration indicates the generation backend failed; fatal to the request
	ErrGeneration = errors.New("generation failed")
)

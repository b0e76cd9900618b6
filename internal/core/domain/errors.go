package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion Errors.

	// ErrUnsupportedContentType indicates content that is neither PDF nor plain text.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrExtractionFailure indicates a parser could not produce text from the content.
	ErrExtractionFailure = errors.New("extraction failed")

	// ErrFetchFailure indicates the document could not be downloaded.
	// It is always reported together with ErrExtractionFailure.
	ErrFetchFailure = errors.New("fetch failed")

	// ErrEmptyContent indicates the extracted text is empty after cleaning.
	ErrEmptyContent = errors.New("no text content extracted")

	// ErrIndexingFailure indicates an embedding or vector upsert error.
	// Segments written before the failure stay in the index.
	ErrIndexingFailure = errors.New("indexing failed")

	// Session Errors.

	// ErrNoSession indicates the caller has no active document.
	ErrNoSession = errors.New("no active session")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrContractViolation indicates model output did not match the expected JSON shape.
	// It is recovered internally and never returned to callers.
	ErrContractViolation = errors.New("structured output contract violated")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

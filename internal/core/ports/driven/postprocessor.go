package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// PostProcessor turns document content into segments.
// PostProcessors are chained in a pipeline (e.g., chunking, whitespace cleanup).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns segments.
	// A processor that creates segments (e.g., chunker) receives nil.
	// A processor that refines segments receives and returns them.
	Process(ctx context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final segments after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Segment, error)
}

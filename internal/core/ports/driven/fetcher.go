package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Fetcher downloads document bytes from a URL.
type Fetcher interface {
	// Fetch returns the body and declared content type.
	// Non-success responses are reported as domain.ErrFetchFailure.
	Fetch(ctx context.Context, url string) (*domain.RawContent, error)
}

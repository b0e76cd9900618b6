package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser converts raw bytes of one family of MIME types into text.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	Priority() int

	// Normalise extracts text from raw content.
	// Returns domain.ErrExtractionFailure when the content cannot be parsed.
	Normalise(ctx context.Context, raw *domain.RawContent) (string, error)
}

// NormaliserRegistry selects the normaliser for a content type.
type NormaliserRegistry interface {
	// Normalise extracts text using the best matching normaliser.
	// Returns domain.ErrUnsupportedContentType when none matches.
	Normalise(ctx context.Context, raw *domain.RawContent) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

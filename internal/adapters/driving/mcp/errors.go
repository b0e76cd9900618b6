// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions about, summarise and risk-scan documents by URL.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: qa service is required")

// toolError describes a domain error for the calling assistant.
// The original error stays wrapped.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("invalid arguments: %w", err)
	case errors.Is(err, domain.ErrUnsupportedContentType):
		return fmt.Errorf("the document is neither PDF nor plain text: %w", err)
	case errors.Is(err, domain.ErrFetchFailure):
		return fmt.Errorf("the document could not be downloaded: %w", err)
	case errors.Is(err, domain.ErrExtractionFailure):
		return fmt.Errorf("no text could be extracted from the document: %w", err)
	case errors.Is(err, domain.ErrEmptyContent):
		return fmt.Errorf("the document contains no text: %w", err)
	case errors.Is(err, domain.ErrIndexingFailure):
		return fmt.Errorf("the document could not be indexed: %w", err)
	default:
		return err
	}
}

// Package plaintext extracts text from text/plain content.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise decodes the content using the charset declared in the MIME type.
// Content without a charset parameter is decoded as UTF-8 when valid.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawContent) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	reader, err := charset.NewReader(bytes.NewReader(raw.Content), raw.MIMEType)
	if err != nil {
		return "", fmt.Errorf("%w: decode text: %w", domain.ErrExtractionFailure, err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: read text: %w", domain.ErrExtractionFailure, err)
	}

	return string(decoded), nil
}

// Package pdf extracts text from PDF documents using ledongthuc/pdf.
package pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PDF documents.
// The bytes are spooled to a temporary file which is always removed before returning.
type Normaliser struct {
	tempDir string
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithTempDir sets the directory for the spooled PDF. Defaults to os.TempDir.
func WithTempDir(dir string) Option {
	return func(n *Normaliser) {
		n.tempDir = dir
	}
}

// New creates a new PDF normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise extracts text from every non-empty page.
// Pages are delimited with "=== Page N ===" headers.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawContent) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp(n.tempDir, "docqa-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("Failed to remove temp PDF %s: %v", path, rmErr)
		}
	}()

	_, err = tmp.Write(raw.Content)
	closeErr := tmp.Close()
	if err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}

	return extractPages(path)
}

// extractPages reads the PDF at path. The parser panics on some malformed
// inputs, so panics are reported as extraction failures.
func extractPages(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrExtractionFailure, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open PDF: %w", domain.ErrExtractionFailure, err)
	}
	defer f.Close()

	var b strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", domain.ErrExtractionFailure, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		fmt.Fprintf(&b, "\n=== Page %d ===\n%s\n", i, content)
	}

	logger.Debug("Extracted %d characters from %d PDF pages", b.Len(), total)
	return b.String(), nil
}

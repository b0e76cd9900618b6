// Package whitespace collapses runs of blank space inside segments.
package whitespace

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines      = regexp.MustCompile(`\n\s*\n+`)
	carriageReturns = regexp.MustCompile(`\r\n?`)
)

// Processor normalises whitespace and drops segments left empty.
// Ordinals and IDs are reassigned so they stay contiguous.
type Processor struct{}

// New creates a whitespace processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Process cleans each incoming segment.
func (p *Processor) Process(_ context.Context, doc *domain.Document, segments []domain.Segment) ([]domain.Segment, error) {
	texts := make([]string, 0, len(segments))
	for _, s := range segments {
		if text := Clean(s.Text); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	return domain.NewSegments(doc.ID, texts), nil
}

// Clean collapses horizontal whitespace runs to one space and blank line runs
// to a single paragraph break.
func Clean(text string) string {
	text = carriageReturns.ReplaceAllString(text, "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// genericMIMEType is what servers send when they do not know the type.
const genericMIMEType = "application/octet-stream"

// Registry dispatches raw content to the highest priority matching normaliser.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser, keeping the list ordered by priority.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	return types
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawContent) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	contentType := DetectContentType(raw.MIMEType, raw.Content)
	logger.Debug("Content type for %s: declared=%q resolved=%q", raw.Source, raw.MIMEType, contentType)

	normaliser := r.match(contentType)
	if normaliser == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, contentType)
	}

	resolved := *raw
	resolved.MIMEType = contentType
	return normaliser.Normalise(ctx, &resolved)
}

func (r *Registry) match(contentType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if strings.Contains(contentType, t) {
				return n
			}
		}
	}
	return nil
}

// DetectContentType lowercases the declared type and sniffs the bytes
// when the declaration is missing or generic.
func DetectContentType(declared string, content []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && !strings.HasPrefix(declared, genericMIMEType) {
		return declared
	}
	if len(content) == 0 {
		return declared
	}
	return strings.ToLower(mimetype.Detect(content).String())
}

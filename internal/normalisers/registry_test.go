package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type stubNormaliser struct {
	types    []string
	priority int
	name     string
	lastMIME string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawContent) (string, error) {
	s.lastMIME = raw.MIMEType
	return s.name, nil
}

func TestRegistry_RoutesBySubstring(t *testing.T) {
	pdf := &stubNormaliser{types: []string{"application/pdf"}, priority: 60, name: "pdf"}
	text := &stubNormaliser{types: []string{"text/plain"}, priority: 50, name: "text"}
	r := NewRegistry(text, pdf)

	out, err := r.Normalise(context.Background(), &domain.RawContent{
		MIMEType: "Application/PDF; qs=0.9",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "pdf", out)
	assert.Equal(t, "application/pdf; qs=0.9", pdf.lastMIME)

	out, err = r.Normalise(context.Background(), &domain.RawContent{
		MIMEType: "text/plain; charset=utf-8",
		Content:  []byte("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "text", out)
}

func TestRegistry_PriorityOrder(t *testing.T) {
	low := &stubNormaliser{types: []string{"text/plain"}, priority: 1, name: "low"}
	high := &stubNormaliser{types: []string{"text/plain"}, priority: 90, name: "high"}
	r := NewRegistry(low, high)

	out, err := r.Normalise(context.Background(), &domain.RawContent{MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "high", out)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(&stubNormaliser{types: []string{"text/plain"}, priority: 50})

	_, err := r.Normalise(context.Background(), &domain.RawContent{
		MIMEType: "text/html",
		Content:  []byte("<html></html>"),
	})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedContentType))
	assert.Contains(t, err.Error(), "text/html")
}

func TestRegistry_NilContent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	r := NewRegistry(
		&stubNormaliser{types: []string{"text/plain"}, priority: 50},
		&stubNormaliser{types: []string{"application/pdf", "text/plain"}, priority: 60},
	)

	assert.ElementsMatch(t, []string{"application/pdf", "text/plain"}, r.SupportedMIMETypes())
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		content  []byte
		contains string
	}{
		{"declared wins", "Application/PDF", []byte("plain"), "application/pdf"},
		{"octet stream sniffs pdf", "application/octet-stream", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), "application/pdf"},
		{"missing sniffs text", "", []byte("just some words\n"), "text/plain"},
		{"empty content keeps declaration", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, DetectContentType(tt.declared, tt.content), tt.contains)
		})
	}
}

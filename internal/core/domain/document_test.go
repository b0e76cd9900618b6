package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentID(t *testing.T) {
	assert.Equal(t, "chunk_doc-1_0", SegmentID("doc-1", 0))
	assert.Equal(t, "chunk_doc-1_12", SegmentID("doc-1", 12))
}

func TestNewSegments(t *testing.T) {
	segments := NewSegments("doc-1", []string{"alpha", "beta", "gamma"})

	require.Len(t, segments, 3)
	for i, s := range segments {
		assert.Equal(t, i, s.Ordinal)
		assert.Equal(t, "doc-1", s.DocumentID)
		assert.Equal(t, SegmentID("doc-1", i), s.ID)
	}
	assert.Equal(t, "beta", segments[1].Text)
}

func TestNewSegments_Empty(t *testing.T) {
	assert.Empty(t, NewSegments("doc-1", nil))
}

func TestSegment_Length(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"ascii", "hello", 5},
		{"empty", "", 0},
		{"multibyte counts characters", "prämie", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Segment{Text: tt.text}.Length())
		})
	}
}

func TestDocument_Texts(t *testing.T) {
	doc := &Document{
		ID:       "doc-1",
		Segments: NewSegments("doc-1", []string{"one", "two"}),
	}

	assert.Equal(t, []string{"one", "two"}, doc.Texts())
}

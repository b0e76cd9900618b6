package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Document represents an ingested document.
// It is immutable once created; re-ingesting the same content yields a new Document.
type Document struct {
	// ID is the unique identifier, generated fresh on every ingestion.
	ID string

	// Source is the URL or upload filename the document came from.
	Source string

	// Content is the full text after extraction.
	// Summarisation and risk scans read it directly.
	Content string

	// Segments are the ordered retrievable spans produced by chunking.
	Segments []Segment

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Texts returns the segment texts in ordinal order.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.Segments))
	for i, s := range d.Segments {
		texts[i] = s.Text
	}
	return texts
}

// Segment is a contiguous span of document text.
// Segments are owned by exactly one Document.
type Segment struct {
	// ID is derived from the document ID and ordinal.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the zero-based position within the document.
	Ordinal int

	// Text is the segment content.
	Text string
}

// Length returns the character count of the segment text.
func (s Segment) Length() int {
	return utf8.RuneCountInString(s.Text)
}

// SegmentID builds the vector entry key for a segment.
func SegmentID(documentID string, ordinal int) string {
	return fmt.Sprintf("chunk_%s_%d", documentID, ordinal)
}

// NewSegments builds ordered segments for a document from raw texts.
func NewSegments(documentID string, texts []string) []Segment {
	segments := make([]Segment, len(texts))
	for i, text := range texts {
		segments[i] = Segment{
			ID:         SegmentID(documentID, i),
			DocumentID: documentID,
			Ordinal:    i,
			Text:       text,
		}
	}
	return segments
}

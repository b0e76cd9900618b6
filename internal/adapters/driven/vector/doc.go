// Package vector holds VectorStore adapters.
//
// Every adapter stores the segment text and its document ID as metadata
// and applies an equality filter on document ID at query time, so several
// documents can share one namespace without leaking into each other's answers.
package vector

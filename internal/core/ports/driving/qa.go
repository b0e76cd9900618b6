package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QAService answers questions about documents.
type QAService interface {
	// Ask answers questions about the document at url.
	// The document is ingested on first use and reused from cache afterwards.
	// The result has exactly one answer per question.
	Ask(ctx context.Context, url string, questions []string) ([]string, error)

	// Upload ingests a document as the session's active document.
	// An empty token creates a new session. Returns the session token.
	Upload(ctx context.Context, token string, upload domain.Upload) (string, error)

	// AskSession answers questions about the session's active document.
	// Returns domain.ErrNoSession when the token has no document.
	AskSession(ctx context.Context, token string, questions []string) ([]string, error)

	// CacheStats reports cache occupancy.
	CacheStats(ctx context.Context) domain.CacheStats
}

// AnalysisService runs whole-document operations.
type AnalysisService interface {
	// Summarize summarises the session's active document.
	Summarize(ctx context.Context, token string) (string, error)

	// ScanRisks runs the risk checklist over the session's active document.
	ScanRisks(ctx context.Context, token string) ([]domain.RiskFinding, error)

	// SummarizeSource summarises the document at url without indexing it.
	SummarizeSource(ctx context.Context, url string) (string, error)

	// ScanSource runs the risk checklist over the document at url without indexing it.
	ScanSource(ctx context.Context, url string) ([]domain.RiskFinding, error)
}

// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DocumentLoaded is sent when the document upload finishes.
type DocumentLoaded struct {
	Token  string
	Source string
	Err    error
}

// AnswerReceived carries the answer to one question.
type AnswerReceived struct {
	Question string
	Answer   string
	Err      error
}

// SummaryReceived carries the document summary.
type SummaryReceived struct {
	Summary string
	Err     error
}

// RisksReceived carries the risk scan findings.
type RisksReceived struct {
	Findings []domain.RiskFinding
	Err      error
}

package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	token     string
	answers   []string
	uploadErr error
	askErr    error

	uploads   []domain.Upload
	questions []string
}

func (m *mockQAService) Ask(_ context.Context, _ string, _ []string) ([]string, error) {
	return m.answers, m.askErr
}

func (m *mockQAService) Upload(_ context.Context, _ string, upload domain.Upload) (string, error) {
	m.uploads = append(m.uploads, upload)
	return m.token, m.uploadErr
}

func (m *mockQAService) AskSession(_ context.Context, _ string, questions []string) ([]string, error) {
	m.questions = append(m.questions, questions...)
	return m.answers, m.askErr
}

func (m *mockQAService) CacheStats(_ context.Context) domain.CacheStats {
	return domain.CacheStats{}
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	summary  string
	findings []domain.RiskFinding
	err      error
	tokens   []string
}

func (m *mockAnalysisService) Summarize(_ context.Context, token string) (string, error) {
	m.tokens = append(m.tokens, token)
	return m.summary, m.err
}

func (m *mockAnalysisService) ScanRisks(_ context.Context, token string) ([]domain.RiskFinding, error) {
	m.tokens = append(m.tokens, token)
	return m.findings, m.err
}

func (m *mockAnalysisService) SummarizeSource(_ context.Context, _ string) (string, error) {
	return m.summary, m.err
}

func (m *mockAnalysisService) ScanSource(_ context.Context, _ string) ([]domain.RiskFinding, error) {
	return m.findings, m.err
}

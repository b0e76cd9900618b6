package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/docqa/internal/bootstrap"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQAService is a mock implementation of driving.QAService.
type mockQAService struct {
	answers   []string
	err       error
	url       string
	questions []string
}

func (m *mockQAService) Ask(_ context.Context, url string, questions []string) ([]string, error) {
	m.url = url
	m.questions = questions
	return m.answers, m.err
}

func (m *mockQAService) Upload(_ context.Context, token string, _ domain.Upload) (string, error) {
	return token, m.err
}

func (m *mockQAService) AskSession(_ context.Context, _ string, _ []string) ([]string, error) {
	return m.answers, m.err
}

func (m *mockQAService) CacheStats(_ context.Context) domain.CacheStats {
	return domain.CacheStats{}
}

// mockAnalysisService is a mock implementation of driving.AnalysisService.
type mockAnalysisService struct {
	summary  string
	findings []domain.RiskFinding
	err      error
	url      string
}

func (m *mockAnalysisService) Summarize(_ context.Context, _ string) (string, error) {
	return m.summary, m.err
}

func (m *mockAnalysisService) ScanRisks(_ context.Context, _ string) ([]domain.RiskFinding, error) {
	return m.findings, m.err
}

func (m *mockAnalysisService) SummarizeSource(_ context.Context, url string) (string, error) {
	m.url = url
	return m.summary, m.err
}

func (m *mockAnalysisService) ScanSource(_ context.Context, url string) ([]domain.RiskFinding, error) {
	m.url = url
	return m.findings, m.err
}

// withServices makes every command use svc and counts Close calls.
func withServices(t *testing.T, svc *Services) *int {
	t.Helper()
	closed := new(int)
	svc.Close = func() { *closed++ }
	SetFactory(func(_ context.Context, _ bootstrap.Options) (*Services, error) {
		return svc, nil
	})
	t.Cleanup(func() { SetFactory(nil) })
	return closed
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags() {
	verbose = false
	logJSON = false
	configPath = ""
	envFile = ""
	askJSON = false
	risksJSON = false
	serveAddr = ""
	mcpHTTPAddr = ""
	checkPing = false
}

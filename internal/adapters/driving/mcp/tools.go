package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask_document tool.
type AskInput struct {
	URL       string   `json:"url" jsonschema:"URL of a PDF or plain text document"`
	Questions []string `json:"questions" jsonschema:"questions to answer from the document"`
}

// AskOutput is the output schema for the ask_document tool.
type AskOutput struct {
	Answers []QuestionAnswer `json:"answers"`
}

// QuestionAnswer pairs a question with its answer.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DocumentInput is the input schema for whole-document tools.
type DocumentInput struct {
	URL string `json:"url" jsonschema:"URL of a PDF or plain text document"`
}

// SummaryOutput is the output schema for the summarize_document tool.
type SummaryOutput struct {
	Summary string `json:"summary"`
}

// RisksOutput is the output schema for the scan_risks tool.
type RisksOutput struct {
	Findings []RiskOutput `json:"findings"`
	Count    int          `json:"count"`
}

// RiskOutput is one matched risk clause.
type RiskOutput struct {
	Category    string `json:"category"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

// CacheStatsInput is the empty input of the cache_stats tool.
type CacheStatsInput struct{}

// CacheStatsOutput is the output schema for the cache_stats tool.
type CacheStatsOutput struct {
	CachedDocuments int      `json:"cached_documents"`
	Documents       []string `json:"documents"`
	ActiveSessions  int      `json:"active_sessions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_document",
		Description: "Answer questions about a document at a URL, citing only its content",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report which documents are already ingested",
	}, s.handleCacheStats)

	if s.ports.Analysis == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_document",
		Description: "Summarise a whole document at a URL",
	}, s.handleSummarize)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_risks",
		Description: "Check a document at a URL against a checklist of risky clauses",
	}, s.handleScanRisks)
}

// handleAsk handles the ask_document tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.URL) == "" || len(input.Questions) == 0 {
		return nil, AskOutput{}, toolError(fmt.Errorf("%w: url and at least one question are required", domain.ErrInvalidInput))
	}

	answers, err := s.ports.QA.Ask(ctx, input.URL, input.Questions)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	output := AskOutput{Answers: make([]QuestionAnswer, len(input.Questions))}
	for i, q := range input.Questions {
		output.Answers[i] = QuestionAnswer{Question: q}
		if i < len(answers) {
			output.Answers[i].Answer = answers[i]
		}
	}
	return nil, output, nil
}

// handleSummarize handles the summarize_document tool invocation.
func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, SummaryOutput, error) {
	summary, err := s.ports.Analysis.SummarizeSource(ctx, input.URL)
	if err != nil {
		return nil, SummaryOutput{}, toolError(err)
	}
	return nil, SummaryOutput{Summary: summary}, nil
}

// handleScanRisks handles the scan_risks tool invocation.
func (s *Server) handleScanRisks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, RisksOutput, error) {
	findings, err := s.ports.Analysis.ScanSource(ctx, input.URL)
	if err != nil {
		return nil, RisksOutput{}, toolError(err)
	}

	output := RisksOutput{
		Findings: make([]RiskOutput, len(findings)),
		Count:    len(findings),
	}
	for i, f := range findings {
		output.Findings[i] = RiskOutput{Category: f.Category, Quote: f.Quote, Explanation: f.Explanation}
	}
	return nil, output, nil
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ CacheStatsInput,
) (*mcp.CallToolResult, CacheStatsOutput, error) {
	return nil, cacheStatsOutput(s.ports.QA.CacheStats(ctx)), nil
}

func cacheStatsOutput(stats domain.CacheStats) CacheStatsOutput {
	docs := stats.Documents
	if docs == nil {
		docs = []string{}
	}
	return CacheStatsOutput{
		CachedDocuments: stats.CachedDocuments,
		Documents:       docs,
		ActiveSessions:  stats.ActiveSessions,
	}
}

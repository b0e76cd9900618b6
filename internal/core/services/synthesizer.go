package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default synthesis settings.
const (
	DefaultSummaryGroupSize = 5
	DefaultRiskPrefixChars  = 30000
)

const answerPreamble = `You are an analyst answering questions about legal, insurance and policy documents.
Answer only from the context chunks provided. Do not use outside knowledge.
Synthesise across chunks and infer where the text supports it.
Keep each answer to at most three lines and skip filler such as "According to the policy".
Respond with a single JSON object and nothing else: {"answers": ["answer 1", "answer 2"]}.
The answers array must have one entry per question, in question order.`

const summaryMapPrompt = `Summarise the following section of a document in a short paragraph.
Keep key obligations, amounts, dates and conditions.

%s`

const summaryReducePrompt = `The following are summaries of consecutive sections of one document.
Combine them into a single coherent summary of the whole document.
Do not repeat points and keep the most important details.

%s`

const riskPrompt = `You are reviewing a document for risky clauses.
Category: %s
What to look for: %s

Read the document below. If it contains a clause in this category, quote the clause verbatim.
Respond with a single JSON object and nothing else:
{"found": true or false, "quote": "verbatim clause or empty", "explanation": "why it is a risk or empty"}

DOCUMENT:
%s`

// SynthesizerService asks the language model for answers, summaries and risk findings.
type SynthesizerService struct {
	llm       driven.LLMService
	throttler driven.Throttler
	pipeline  driven.PostProcessorPipeline
	parsers   []answerParser

	groupSize   int
	prefixChars int
	checklist   []domain.RiskCategory
	genOpts     driven.GenerateOptions
}

// SynthesizerOption configures the synthesizer.
type SynthesizerOption func(*SynthesizerService)

// WithSummaryGroupSize sets how many chunks each map call summarises.
func WithSummaryGroupSize(n int) SynthesizerOption {
	return func(s *SynthesizerService) {
		if n > 0 {
			s.groupSize = n
		}
	}
}

// WithRiskPrefixChars caps the document prefix sent per risk category.
func WithRiskPrefixChars(n int) SynthesizerOption {
	return func(s *SynthesizerService) {
		if n > 0 {
			s.prefixChars = n
		}
	}
}

// WithRiskChecklist replaces the default risk categories.
func WithRiskChecklist(categories []domain.RiskCategory) SynthesizerOption {
	return func(s *SynthesizerService) {
		if len(categories) > 0 {
			s.checklist = categories
		}
	}
}

// WithGenerateOptions sets the model options for every call.
func WithGenerateOptions(opts driven.GenerateOptions) SynthesizerOption {
	return func(s *SynthesizerService) {
		s.genOpts = opts
	}
}

// NewSynthesizerService creates a new synthesizer.
// The throttler gates summary and risk calls; nil runs them unthrottled.
// The pipeline chunks text for summarisation.
func NewSynthesizerService(
	llm driven.LLMService,
	throttler driven.Throttler,
	pipeline driven.PostProcessorPipeline,
	opts ...SynthesizerOption,
) *SynthesizerService {
	s := &SynthesizerService{
		llm:         llm,
		throttler:   throttler,
		pipeline:    pipeline,
		parsers:     defaultAnswerParsers(),
		groupSize:   DefaultSummaryGroupSize,
		prefixChars: DefaultRiskPrefixChars,
		checklist:   domain.DefaultRiskChecklist(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer returns exactly one answer per question, grounded in segments.
// A failed model call yields an error answer for every question.
func (s *SynthesizerService) Answer(ctx context.Context, questions, segments []string) []string {
	if len(questions) == 0 {
		return []string{}
	}

	prompt := answerPreamble + "\n\n" + answerPrompt(questions, segments)
	logger.Info("Sending %d questions with %d context chunks (%d chars)",
		len(questions), len(segments), len(prompt))

	response, err := s.generate(ctx, prompt)
	if err != nil {
		logger.Error("Failed to generate answers: %v", err)
		answers := make([]string, len(questions))
		for i := range answers {
			answers[i] = domain.SynthesisErrorAnswer(err)
		}
		return answers
	}

	logger.Debug("Raw model response: %s", truncate(response, 500))
	return parseAnswers(s.parsers, strings.TrimSpace(response), len(questions))
}

// answerPrompt renders the context blocks and numbered questions.
func answerPrompt(questions, segments []string) string {
	var b strings.Builder
	b.WriteString("CONTEXT CHUNKS:\n")
	b.WriteString(formatContext(segments))
	b.WriteString("\n\nQUESTIONS TO ANSWER:\n")
	for i, q := range questions {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, q)
	}
	b.WriteString("\n\nAnswer each question using only the context chunks above.")
	return b.String()
}

// formatContext renders segments as numbered [Chunk i] blocks.
func formatContext(segments []string) string {
	blocks := make([]string, len(segments))
	for i, seg := range segments {
		blocks[i] = fmt.Sprintf("[Chunk %d]\n%s", i+1, strings.TrimSpace(seg))
	}
	return strings.Join(blocks, "\n\n")
}

// Summarize chunks text, summarises groups of chunks, then combines the group summaries.
// Failures are returned as an error summary.
func (s *SynthesizerService) Summarize(ctx context.Context, text string) string {
	summary, err := s.summarize(ctx, text)
	if err != nil {
		logger.Error("Summarisation failed: %v", err)
		return "Error summarizing document: " + err.Error()
	}
	return summary
}

func (s *SynthesizerService) summarize(ctx context.Context, text string) (string, error) {
	if s.pipeline == nil {
		return "", fmt.Errorf("%w: no chunking pipeline", domain.ErrInvalidInput)
	}
	segments, err := s.pipeline.Process(ctx, &domain.Document{Content: text})
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", domain.ErrEmptyContent
	}

	groups := (len(segments) + s.groupSize - 1) / s.groupSize
	logger.Info("Summarising %d chunks in %d groups", len(segments), groups)

	partials := make([]string, 0, groups)
	for start := 0; start < len(segments); start += s.groupSize {
		end := min(start+s.groupSize, len(segments))
		texts := make([]string, 0, end-start)
		for _, seg := range segments[start:end] {
			texts = append(texts, seg.Text)
		}

		partial, err := s.throttled(ctx, fmt.Sprintf(summaryMapPrompt, strings.Join(texts, "\n\n")))
		if err != nil {
			return "", fmt.Errorf("summarising chunks %d-%d: %w", start, end-1, err)
		}
		partials = append(partials, strings.TrimSpace(partial))
	}

	sections := make([]string, len(partials))
	for i, p := range partials {
		sections[i] = fmt.Sprintf("Section %d summary:\n%s", i+1, p)
	}
	summary, err := s.throttled(ctx, fmt.Sprintf(summaryReducePrompt, strings.Join(sections, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("combining summaries: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// riskResponse is the per-category model contract.
type riskResponse struct {
	Found       bool   `json:"found"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

// ScanRisks checks the start of text against each checklist category.
// Categories whose call or parse fails are logged and skipped.
func (s *SynthesizerService) ScanRisks(ctx context.Context, text string) []domain.RiskFinding {
	findings := []domain.RiskFinding{}
	prefix := truncate(text, s.prefixChars)

	for _, category := range s.checklist {
		if ctx.Err() != nil {
			logger.Warn("Risk scan stopped: %v", ctx.Err())
			break
		}

		response, err := s.throttled(ctx, fmt.Sprintf(riskPrompt, category.Name, category.Description, prefix))
		if err != nil {
			logger.Error("Risk category %q failed: %v", category.Name, err)
			continue
		}

		result, err := parseRiskResponse(response)
		if err != nil {
			logger.Warn("Risk category %q returned unparseable output: %v", category.Name, err)
			continue
		}
		if !result.Found {
			logger.Debug("Risk category %q not found", category.Name)
			continue
		}

		findings = append(findings, domain.RiskFinding{
			Category:    category.Name,
			Quote:       strings.TrimSpace(result.Quote),
			Explanation: strings.TrimSpace(result.Explanation),
		})
	}

	logger.Info("Risk scan found %d of %d categories", len(findings), len(s.checklist))
	return findings
}

// parseRiskResponse decodes the object between the first and last brace.
func parseRiskResponse(text string) (riskResponse, error) {
	var result riskResponse
	payload, ok := extractJSON(text)
	if !ok {
		return result, fmt.Errorf("%w: no JSON object found", domain.ErrContractViolation)
	}
	if end := strings.LastIndex(payload, "}"); end >= 0 {
		payload = payload[:end+1]
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return result, fmt.Errorf("%w: %w", domain.ErrContractViolation, err)
	}
	return result, nil
}

// generate makes one unthrottled model call.
func (s *SynthesizerService) generate(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	return s.llm.Generate(ctx, prompt, s.genOpts)
}

// throttled makes one model call through the throttler.
func (s *SynthesizerService) throttled(ctx context.Context, prompt string) (string, error) {
	if s.throttler == nil {
		return s.generate(ctx, prompt)
	}
	var out string
	err := s.throttler.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.generate(ctx, prompt)
		return err
	})
	return out, err
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

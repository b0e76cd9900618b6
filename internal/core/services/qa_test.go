package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	appleURL = "https://example.com/apple.txt"
	zebraURL = "https://example.com/zebra.txt"
)

type qaHarness struct {
	fetcher  *stubFetcher
	embedder *stubEmbedder
	store    *stubVectorStore
	llm      *stubLLM
	svc      *QAService
}

// echoAnswers returns one answer per numbered question in the prompt.
func echoAnswers(prompt string) (string, error) {
	n := strings.Count(prompt, "\n") // upper bound
	answers := make([]string, 0)
	for i := 1; i <= n; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("\n%d. ", i)) {
			break
		}
		answers = append(answers, fmt.Sprintf("%q", fmt.Sprintf("answer %d", i)))
	}
	return `{"answers": [` + strings.Join(answers, ", ") + `]}`, nil
}

func newQAHarness(opts ...QAOption) *qaHarness {
	h := &qaHarness{
		fetcher: &stubFetcher{docs: map[string]*domain.RawContent{
			appleURL: textDoc(appleURL, "Apples grow in the orchard.\n\nApple pie needs apples."),
			zebraURL: textDoc(zebraURL, "Zebras have stripes.\n\nA zebra lives on the savanna."),
		}},
		embedder: &stubEmbedder{},
		store:    newStubVectorStore(),
		llm:      &stubLLM{respond: echoAnswers},
	}

	pipeline := testPipeline(30, 0)
	h.svc = NewQAService(
		NewExtractorService(h.fetcher, testRegistry()),
		pipeline,
		NewIndexService(h.embedder, h.store),
		NewSynthesizerService(h.llm, &countingThrottler{}, pipeline),
		NewDocumentCache(memory.NewStore[domain.CacheEntry]()),
		NewSessionStore(memory.NewStore[domain.SessionEntry]()),
		opts...,
	)
	return h
}

func TestQAService_Ask_CachesIngestion(t *testing.T) {
	h := newQAHarness()
	ctx := context.Background()

	answers, err := h.svc.Ask(ctx, appleURL, []string{"Where do apples grow?", "What needs apples?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"answer 1", "answer 2"}, answers)

	indexed := h.store.count(DefaultNamespace)
	require.Positive(t, indexed)

	_, err = h.svc.Ask(ctx, "HTTPS://Example.COM/apple.txt#section", []string{"Again?"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), h.fetcher.calls.Load())
	assert.Equal(t, indexed, h.store.count(DefaultNamespace))

	stats := h.svc.CacheStats(ctx)
	assert.Equal(t, 1, stats.CachedDocuments)
	assert.Equal(t, []string{domain.SourceKey(appleURL)}, stats.Documents)
}

func TestQAService_Ask_NoCrossDocumentLeakage(t *testing.T) {
	h := newQAHarness()
	ctx := context.Background()

	_, err := h.svc.Ask(ctx, appleURL, []string{"apples?"})
	require.NoError(t, err)
	_, err = h.svc.Ask(ctx, zebraURL, []string{"apples?"})
	require.NoError(t, err)

	require.Equal(t, 2, h.llm.calls())
	assert.NotContains(t, h.llm.prompt(1), "Apple")
	assert.Contains(t, h.llm.prompt(1), "ebra")
}

func TestQAService_Ask_ExactlyOneAnswerPerQuestion(t *testing.T) {
	h := newQAHarness()
	h.llm.respond = func(string) (string, error) { return `{"answers": ["just one"]}`, nil }

	answers, err := h.svc.Ask(context.Background(), appleURL, []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Equal(t, []string{"just one", domain.NoInformationAnswer, domain.NoInformationAnswer}, answers)
}

func TestQAService_Ask_CapsContext(t *testing.T) {
	h := newQAHarness(WithRetrieval(domain.RetrievalSettings{PerQuestion: 1, MaxContext: 2}))

	_, err := h.svc.Ask(context.Background(), appleURL, []string{"orchard", "pie", "apples"})

	require.NoError(t, err)
	prompt := h.llm.prompt(0)
	assert.LessOrEqual(t, strings.Count(prompt, "[Chunk "), 2)
	assert.Positive(t, strings.Count(prompt, "[Chunk "))
}

func TestQAService_Ask_NoQuestions(t *testing.T) {
	h := newQAHarness()

	answers, err := h.svc.Ask(context.Background(), appleURL, nil)

	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.Equal(t, 0, h.llm.calls())
}

func TestQAService_Ask_Errors(t *testing.T) {
	ctx := context.Background()

	h := newQAHarness()
	_, err := h.svc.Ask(ctx, " ", []string{"q"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.svc.Ask(ctx, "https://example.com/missing", []string{"q"})
	assert.ErrorIs(t, err, domain.ErrExtractionFailure)
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.Equal(t, 0, h.svc.CacheStats(ctx).CachedDocuments)

	h = newQAHarness()
	h.embedder.embedErr = errors.New("embedding quota")
	_, err = h.svc.Ask(ctx, appleURL, []string{"q"})
	assert.ErrorIs(t, err, domain.ErrIndexingFailure)
	assert.Equal(t, 0, h.svc.CacheStats(ctx).CachedDocuments)
}

func TestQAService_Ask_CoalescesConcurrentIngestion(t *testing.T) {
	h := newQAHarness()
	h.fetcher.gate = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.svc.Ask(ctx, appleURL, []string{"q"})
		}(i)
	}

	assert.Eventually(t, func() bool { return h.fetcher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(h.fetcher.gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), h.fetcher.calls.Load())
	assert.Equal(t, 1, h.svc.CacheStats(ctx).CachedDocuments)
}

func TestQAService_Ask_SharedIngestionSurvivesCallerCancel(t *testing.T) {
	h := newQAHarness()
	h.fetcher.gate = make(chan struct{})

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = h.svc.Ask(firstCtx, appleURL, []string{"q"})
	}()
	assert.Eventually(t, func() bool { return h.fetcher.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	var answers []string
	var err error
	go func() {
		defer wg.Done()
		answers, err = h.svc.Ask(context.Background(), appleURL, []string{"Where do apples grow?"})
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(h.fetcher.gate)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, []string{"answer 1"}, answers)
	assert.Equal(t, int32(1), h.fetcher.calls.Load())
	assert.Equal(t, 1, h.svc.CacheStats(context.Background()).CachedDocuments)
}

func TestQAService_UploadAndAskSession(t *testing.T) {
	h := newQAHarness()
	ctx := context.Background()

	token, err := h.svc.Upload(ctx, "", domain.Upload{URL: appleURL})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	answers, err := h.svc.AskSession(ctx, token, []string{"apples?"})
	require.NoError(t, err)
	assert.Equal(t, []string{"answer 1"}, answers)
	assert.Contains(t, h.llm.prompt(0), "Apple")

	again, err := h.svc.Upload(ctx, token, domain.Upload{Raw: textDoc("zebra.txt", "Zebras have stripes.")})
	require.NoError(t, err)
	assert.Equal(t, token, again)

	_, err = h.svc.AskSession(ctx, token, []string{"stripes?"})
	require.NoError(t, err)
	assert.Contains(t, h.llm.prompt(1), "Zebras have stripes.")
	assert.NotContains(t, h.llm.prompt(1), "Apple")

	stats := h.svc.CacheStats(ctx)
	assert.Equal(t, 0, stats.CachedDocuments)
	assert.Equal(t, []string{}, stats.Documents)
	assert.Equal(t, 1, stats.ActiveSessions)
}

func TestQAService_Upload_AlwaysReingests(t *testing.T) {
	h := newQAHarness()
	ctx := context.Background()

	first, err := h.svc.Upload(ctx, "", domain.Upload{URL: appleURL})
	require.NoError(t, err)
	indexed := h.store.count(DefaultNamespace)

	second, err := h.svc.Upload(ctx, "", domain.Upload{URL: appleURL})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(2), h.fetcher.calls.Load())
	assert.Equal(t, 2*indexed, h.store.count(DefaultNamespace))
}

func TestQAService_Upload_Invalid(t *testing.T) {
	h := newQAHarness()

	_, err := h.svc.Upload(context.Background(), "", domain.Upload{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestQAService_NoSession(t *testing.T) {
	h := newQAHarness()
	ctx := context.Background()

	_, err := h.svc.AskSession(ctx, "", []string{"q"})
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = h.svc.Summarize(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = h.svc.ScanRisks(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestQAService_SummarizeAndScanSession(t *testing.T) {
	h := newQAHarness()
	h.llm.respond = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Category:") {
			return `{"found": false}`, nil
		}
		return "summary", nil
	}
	ctx := context.Background()

	token, err := h.svc.Upload(ctx, "", domain.Upload{URL: zebraURL})
	require.NoError(t, err)

	summary, err := h.svc.Summarize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)

	findings, err := h.svc.ScanRisks(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestQAService_SourceOperationsSkipIndexing(t *testing.T) {
	h := newQAHarness()
	h.llm.respond = func(prompt string) (string, error) {
		if strings.Contains(prompt, "Category: Automatic Renewal") {
			return `{"found": true, "quote": "Apples grow", "explanation": "x"}`, nil
		}
		if strings.Contains(prompt, "Category:") {
			return `{"found": false}`, nil
		}
		return "summary", nil
	}
	ctx := context.Background()

	summary, err := h.svc.SummarizeSource(ctx, appleURL)
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)

	findings, err := h.svc.ScanSource(ctx, appleURL)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "Automatic Renewal", findings[0].Category)

	assert.Equal(t, 0, h.store.count(DefaultNamespace))
	assert.Equal(t, 0, h.svc.CacheStats(ctx).CachedDocuments)

	_, err = h.svc.SummarizeSource(ctx, "https://example.com/missing")
	assert.ErrorIs(t, err, domain.ErrFetchFailure)
}

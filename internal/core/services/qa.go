package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure QAService implements the interfaces.
var (
	_ driving.QAService       = (*QAService)(nil)
	_ driving.AnalysisService = (*QAService)(nil)
)

// Default retrieval settings.
const (
	DefaultPerQuestion = 5
	DefaultMaxContext  = 20
)

// QAService runs ingestion, retrieval and synthesis for each request.
type QAService struct {
	extractor   *ExtractorService
	pipeline    driven.PostProcessorPipeline
	index       *IndexService
	synthesizer *SynthesizerService
	documents   *DocumentCache
	sessions    *SessionStore

	queryLimit  int
	perQuestion int
	maxContext  int

	ingestions singleflight.Group
	newID      func() string
}

// QAOption configures the QA service.
type QAOption func(*QAService)

// WithRetrieval sets the per-query limit, the per-question share and the context cap.
func WithRetrieval(settings domain.RetrievalSettings) QAOption {
	return func(s *QAService) {
		if settings.QueryLimit > 0 {
			s.queryLimit = settings.QueryLimit
		}
		if settings.PerQuestion > 0 {
			s.perQuestion = settings.PerQuestion
		}
		if settings.MaxContext > 0 {
			s.maxContext = settings.MaxContext
		}
	}
}

// NewQAService creates a new QA service.
func NewQAService(
	extractor *ExtractorService,
	pipeline driven.PostProcessorPipeline,
	index *IndexService,
	synthesizer *SynthesizerService,
	documents *DocumentCache,
	sessions *SessionStore,
	opts ...QAOption,
) *QAService {
	s := &QAService{
		extractor:   extractor,
		pipeline:    pipeline,
		index:       index,
		synthesizer: synthesizer,
		documents:   documents,
		sessions:    sessions,
		queryLimit:  DefaultQueryLimit,
		perQuestion: DefaultPerQuestion,
		maxContext:  DefaultMaxContext,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers questions about the document at url.
// The document is ingested once per source key and reused afterwards.
func (s *QAService) Ask(ctx context.Context, url string, questions []string) ([]string, error) {
	logger.Section("Ask")
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: document url is required", domain.ErrInvalidInput)
	}

	entry, err := s.cachedOrIngest(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return []string{}, nil
	}

	segments := s.gatherContext(ctx, entry.DocumentID, questions)
	return s.synthesizer.Answer(ctx, questions, segments), nil
}

// cachedOrIngest returns the cache entry for url, ingesting on a miss.
// Concurrent misses for the same key share one ingestion.
func (s *QAService) cachedOrIngest(ctx context.Context, url string) (domain.CacheEntry, error) {
	key := domain.SourceKey(url)
	if entry, ok := s.documents.Get(key); ok {
		logger.Info("Cache hit for %s (document %s)", url, entry.DocumentID)
		return entry, nil
	}

	v, err, shared := s.ingestions.Do(key, func() (any, error) {
		if entry, ok := s.documents.Get(key); ok {
			return entry, nil
		}

		// Joined callers wait on this ingestion, so one caller's cancellation must not fail it.
		ingestCtx := context.WithoutCancel(ctx)

		logger.Info("Cache miss for %s, ingesting", url)
		text, err := s.extractor.ExtractURL(ingestCtx, url)
		if err != nil {
			return nil, err
		}
		doc, err := s.ingest(ingestCtx, url, text)
		if err != nil {
			return nil, err
		}

		texts := doc.Texts()
		s.documents.Put(key, doc.ID, texts)
		return domain.CacheEntry{DocumentID: doc.ID, Segments: texts, CachedAt: doc.CreatedAt}, nil
	})
	if err != nil {
		return domain.CacheEntry{}, err
	}
	if shared {
		logger.Debug("Shared ingestion of %s", url)
	}
	return v.(domain.CacheEntry), nil
}

// ingest chunks and indexes text as a new document with a fresh ID.
func (s *QAService) ingest(ctx context.Context, source, text string) (*domain.Document, error) {
	doc := &domain.Document{
		ID:        s.newID(),
		Source:    source,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}

	segments, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", source, err)
	}
	if len(segments) == 0 {
		return nil, domain.ErrEmptyContent
	}
	doc.Segments = segments
	logger.Info("Split %s into %d segments", source, len(segments))

	if err := s.index.Index(ctx, doc.ID, segments); err != nil {
		return nil, err
	}
	return doc, nil
}

// gatherContext takes the top segments per question, drops repeats
// in first-seen order and caps the union.
func (s *QAService) gatherContext(ctx context.Context, documentID string, questions []string) []string {
	seen := make(map[string]bool)
	var union []string
	for _, q := range questions {
		results := s.index.Retrieve(ctx, q, documentID, s.queryLimit)
		if len(results) > s.perQuestion {
			results = results[:s.perQuestion]
		}
		for _, r := range results {
			if !seen[r] {
				seen[r] = true
				union = append(union, r)
			}
		}
	}
	if len(union) > s.maxContext {
		union = union[:s.maxContext]
	}
	logger.Info("Gathered %d context segments for %d questions", len(union), len(questions))
	return union
}

// Upload ingests a document as the session's active document, always with a fresh ID.
func (s *QAService) Upload(ctx context.Context, token string, upload domain.Upload) (string, error) {
	logger.Section("Upload")
	text, err := s.extractor.Extract(ctx, upload)
	if err != nil {
		return "", err
	}

	source := upload.URL
	if source == "" && upload.Raw != nil {
		source = upload.Raw.Source
	}
	doc, err := s.ingest(ctx, source, text)
	if err != nil {
		return "", err
	}

	token = s.sessions.ResolveOrCreate(token)
	s.sessions.Put(token, doc.ID, text)
	logger.Info("Session %s now holds document %s", token, doc.ID)
	return token, nil
}

// AskSession answers questions about the session's active document.
func (s *QAService) AskSession(ctx context.Context, token string, questions []string) ([]string, error) {
	logger.Section("Ask Session")
	entry, err := s.session(token)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return []string{}, nil
	}

	segments := s.gatherContext(ctx, entry.DocumentID, questions)
	return s.synthesizer.Answer(ctx, questions, segments), nil
}

// Summarize summarises the session's active document.
func (s *QAService) Summarize(ctx context.Context, token string) (string, error) {
	logger.Section("Summarize")
	entry, err := s.session(token)
	if err != nil {
		return "", err
	}
	return s.synthesizer.Summarize(ctx, entry.FullText), nil
}

// ScanRisks runs the risk checklist over the session's active document.
func (s *QAService) ScanRisks(ctx context.Context, token string) ([]domain.RiskFinding, error) {
	logger.Section("Risk Scan")
	entry, err := s.session(token)
	if err != nil {
		return nil, err
	}
	return s.synthesizer.ScanRisks(ctx, entry.FullText), nil
}

// SummarizeSource summarises the document at url without indexing it.
func (s *QAService) SummarizeSource(ctx context.Context, url string) (string, error) {
	logger.Section("Summarize")
	text, err := s.extractor.ExtractURL(ctx, url)
	if err != nil {
		return "", err
	}
	return s.synthesizer.Summarize(ctx, text), nil
}

// ScanSource runs the risk checklist over the document at url without indexing it.
func (s *QAService) ScanSource(ctx context.Context, url string) ([]domain.RiskFinding, error) {
	logger.Section("Risk Scan")
	text, err := s.extractor.ExtractURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.synthesizer.ScanRisks(ctx, text), nil
}

// CacheStats reports cache occupancy.
func (s *QAService) CacheStats(_ context.Context) domain.CacheStats {
	keys := s.documents.Keys()
	if keys == nil {
		keys = []string{}
	}
	return domain.CacheStats{
		CachedDocuments: len(keys),
		Documents:       keys,
		ActiveSessions:  s.sessions.Len(),
	}
}

func (s *QAService) session(token string) (domain.SessionEntry, error) {
	entry, ok := s.sessions.Get(token)
	if !ok {
		return domain.SessionEntry{}, domain.ErrNoSession
	}
	return entry, nil
}

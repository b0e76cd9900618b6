package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ExtractorService turns a URL or uploaded bytes into clean text.
type ExtractorService struct {
	fetcher     driven.Fetcher
	normalisers driven.NormaliserRegistry
}

// NewExtractorService creates a new extractor service.
func NewExtractorService(fetcher driven.Fetcher, normalisers driven.NormaliserRegistry) *ExtractorService {
	return &ExtractorService{
		fetcher:     fetcher,
		normalisers: normalisers,
	}
}

// Extract returns the text of an upload, fetching it first when it is a URL.
func (s *ExtractorService) Extract(ctx context.Context, upload domain.Upload) (string, error) {
	if err := upload.Validate(); err != nil {
		return "", fmt.Errorf("%w: provide either a URL or a file, but not both", domain.ErrInvalidInput)
	}
	if upload.URL != "" {
		return s.ExtractURL(ctx, upload.URL)
	}
	return s.ExtractRaw(ctx, upload.Raw)
}

// ExtractURL downloads url and extracts its text.
// Download errors are reported as both ErrExtractionFailure and ErrFetchFailure.
func (s *ExtractorService) ExtractURL(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if s.fetcher == nil {
		return "", fmt.Errorf("%w: %w: no fetcher configured", domain.ErrExtractionFailure, domain.ErrFetchFailure)
	}

	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Error("Download of %s failed: %v", url, err)
		if errors.Is(err, domain.ErrExtractionFailure) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w: %w", domain.ErrExtractionFailure, domain.ErrFetchFailure, err)
	}
	return s.ExtractRaw(ctx, raw)
}

// ExtractRaw extracts text from raw bytes using the declared or sniffed content type.
// NUL characters are stripped and the result is trimmed.
func (s *ExtractorService) ExtractRaw(ctx context.Context, raw *domain.RawContent) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: no content", domain.ErrInvalidInput)
	}

	text, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		logger.Error("Extraction of %s failed: %v", raw.Source, err)
		return "", err
	}

	text = strings.TrimSpace(strings.ReplaceAll(text, "\x00", ""))
	if text == "" {
		return "", domain.ErrEmptyContent
	}

	logger.Info("Extracted and cleaned %d characters from %s", utf8.RuneCountInString(text), raw.Source)
	return text, nil
}

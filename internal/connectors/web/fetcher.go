// Package web downloads documents over HTTP(S) using resty.
package web

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second
)

// Config holds fetcher configuration.
type Config struct {
	// Timeout bounds the whole download (default: 60s).
	Timeout time.Duration

	// UserAgent is sent with every request (default: domain.DefaultUserAgent).
	UserAgent string
}

// Fetcher downloads documents with a fixed timeout and User-Agent.
type Fetcher struct {
	client *resty.Client
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = domain.DefaultUserAgent
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	return &Fetcher{client: client}
}

// Fetch downloads url and returns its bytes and declared content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*domain.RawContent, error) {
	if url == "" {
		return nil, domain.ErrInvalidInput
	}

	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrExtractionFailure, domain.ErrFetchFailure, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %w: status %d from %s",
			domain.ErrExtractionFailure, domain.ErrFetchFailure, resp.StatusCode(), url)
	}

	contentType := resp.Header().Get("Content-Type")
	logger.Info("Downloaded %d bytes (%s) from %s in %s",
		len(resp.Body()), contentType, url, time.Since(start).Round(time.Millisecond))

	return &domain.RawContent{
		Source:   url,
		MIMEType: contentType,
		Content:  resp.Body(),
	}, nil
}

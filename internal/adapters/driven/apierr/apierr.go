// Package apierr classifies failures from remote model and index APIs.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// maxBody bounds how much of an error body is echoed back.
const maxBody = 300

// Transport wraps a request failure that produced no response.
func Transport(provider string, sentinel, err error) error {
	return fmt.Errorf("%w: %s: %w", sentinel, provider, err)
}

// Status converts a non-2xx resty response into an error.
// 429 responses additionally match domain.ErrRateLimited.
func Status(provider string, sentinel error, resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %s: status %d: %s",
			sentinel, domain.ErrRateLimited, provider, resp.StatusCode(), body)
	}
	return fmt.Errorf("%w: %s: status %d: %s", sentinel, provider, resp.StatusCode(), body)
}

// Google classifies an error from a Google client library.
func Google(provider string, sentinel, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %s: %w", sentinel, domain.ErrRateLimited, provider, err)
	}
	if msg := err.Error(); strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "ResourceExhausted") {
		return fmt.Errorf("%w: %w: %s: %w", sentinel, domain.ErrRateLimited, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, provider, err)
}

// Package throttle provides a token-bucket Throttler for batched model calls.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Throttler implements the interface.
var _ driven.Throttler = (*Throttler)(nil)

// DefaultBackoff is applied after a rate limit error.
const DefaultBackoff = 60 * time.Second

// Config holds throttling configuration.
type Config struct {
	// Delay is the minimum gap between one call finishing and the next starting.
	// Zero disables spacing.
	Delay time.Duration

	// Backoff pauses all calls after a rate limit error (default: 60s).
	Backoff time.Duration
}

// Throttler spaces calls with a token bucket of burst one and runs them one at a time.
// The bucket restarts empty whenever a call finishes.
type Throttler struct {
	slot    chan struct{}
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// New creates a throttler from config.
func New(cfg Config) *Throttler {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Throttler{
		slot:    make(chan struct{}, 1),
		limiter: rate.NewLimiter(limit, 1),
		backoff: cfg.Backoff,
	}
}

// Do waits for the slot, any pending backoff and a token, then runs fn.
func (t *Throttler) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case t.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.slot }()

	if err := t.waitBackoff(ctx); err != nil {
		return err
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	err := fn(ctx)
	t.restartBucket(time.Now())
	if errors.Is(err, domain.ErrRateLimited) {
		t.recordRateLimit()
	}
	return err
}

// restartBucket empties the bucket at the given time. Only the slot holder calls it.
func (t *Throttler) restartBucket(at time.Time) {
	t.limiter = rate.NewLimiter(t.limiter.Limit(), 1)
	t.limiter.AllowN(at, 1)
}

func (t *Throttler) waitBackoff(ctx context.Context) error {
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if !time.Now().Before(retryAt) {
		return nil
	}
	timer := time.NewTimer(time.Until(retryAt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (t *Throttler) recordRateLimit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retryAt = time.Now().Add(t.backoff)
	logger.Warn("Rate limited by model provider, pausing calls for %s", t.backoff)
}

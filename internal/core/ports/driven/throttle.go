package driven

import "context"

// Throttler serialises calls to a rate-limited service.
// At most one call runs at a time and call starts are spaced by a floor delay.
type Throttler interface {
	// Do waits for a slot and then runs fn.
	// Returns ctx.Err() if the context ends while waiting, otherwise fn's error.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Package retry wraps posting fetchers with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// DefaultMaxAttempts bounds the total number of fetch attempts.
const DefaultMaxAttempts = 3

// RetryFetcher is a decorator that retries transient failures with exponential
// backoff and jitter before giving up.
type RetryFetcher struct {
	inner       model.PostingFetcher
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewRetryFetcher wraps a fetcher with retry logic. maxAttempts counts the
// first call; values below 1 become DefaultMaxAttempts. baseDelay is the delay
// before the second attempt and doubles on each later one.
func NewRetryFetcher(inner model.PostingFetcher, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *RetryFetcher {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryFetcher{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// FetchPostings calls the wrapped fetcher, retrying on transient errors.
func (f *RetryFetcher) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.backoffDelay(attempt-1, lastErr)

			f.logger.Warn("retrying after transient error",
				"attempt", attempt,
				"max_attempts", f.maxAttempts,
				"delay", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
		}

		postings, err := f.inner.FetchPostings(ctx)
		if err == nil {
			return postings, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", f.maxAttempts, lastErr)
}

// backoffDelay computes the delay before retry n (1-based) with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (f *RetryFetcher) backoffDelay(n int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := f.baseDelay
	for i := 1; i < n; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation, never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	// Network, DNS and decode errors.
	return true
}

// Package ratelimit spaces out requests to the same ATS backend.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/marketbrief/internal/model"
)

// ATSRateLimiter enforces a minimum delay between requests to the same ATS
// backend. Each ATS gets its own token bucket with a burst of one.
type ATSRateLimiter struct {
	mu        sync.Mutex
	limiters  map[model.Platform]*rate.Limiter
	minDelay  time.Duration
	overrides map[model.Platform]time.Duration
}

// NewATSRateLimiter creates a limiter allowing one request per minDelay to
// each ATS. overrides replace minDelay for specific platforms.
func NewATSRateLimiter(minDelay time.Duration, overrides map[model.Platform]time.Duration) *ATSRateLimiter {
	return &ATSRateLimiter{
		limiters:  make(map[model.Platform]*rate.Limiter),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (r *ATSRateLimiter) limiterFor(ats model.Platform) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lim, ok := r.limiters[ats]; ok {
		return lim
	}
	delay := r.minDelay
	if d, ok := r.overrides[ats]; ok {
		delay = d
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	lim := rate.NewLimiter(limit, 1)
	r.limiters[ats] = lim
	return lim
}

// Wait blocks until a request to ats is allowed.
func (r *ATSRateLimiter) Wait(ctx context.Context, ats model.Platform) error {
	if err := r.limiterFor(ats).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", ats, err)
	}
	return nil
}

// RateLimitedFetcher is a decorator that enforces ATS-level rate limiting
// before delegating to the wrapped fetcher.
type RateLimitedFetcher struct {
	inner   model.PostingFetcher
	limiter *ATSRateLimiter
	ats     model.Platform
}

// NewRateLimitedFetcher wraps a fetcher with ATS-level rate limiting.
// All fetchers targeting the same ATS should share the same limiter instance.
func NewRateLimitedFetcher(inner model.PostingFetcher, limiter *ATSRateLimiter, ats model.Platform) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		ats:     ats,
	}
}

// FetchPostings waits for the rate limiter, then delegates.
func (f *RateLimitedFetcher) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	if err := f.limiter.Wait(ctx, f.ats); err != nil {
		return nil, err
	}
	return f.inner.FetchPostings(ctx)
}

package scrape

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amishk599/marketbrief/internal/adapter"
	"github.com/amishk599/marketbrief/internal/cache"
	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/ratelimit"
	"github.com/amishk599/marketbrief/internal/retry"
)

// NewHTTPClient returns the client shared by every adapter in a run. Requests
// are traced through otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// FetcherFactory builds the fetch chain for one company.
type FetcherFactory func(c model.Company) (model.PostingFetcher, error)

// FetcherOptions configures NewFetcherFactory.
type FetcherOptions struct {
	Client      *http.Client
	Limiter     *ratelimit.ATSRateLimiter
	MaxAttempts int
	BaseDelay   time.Duration
	UserAgent   string
	Cache       cache.Store // optional
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewFetcherFactory wraps each adapter, innermost first, with the shared ATS
// rate limiter, retries and the optional cache.
func NewFetcherFactory(opts FetcherOptions) FetcherFactory {
	return func(c model.Company) (model.PostingFetcher, error) {
		f, err := adapter.New(c, opts.Client, adapter.Options{UserAgent: opts.UserAgent, Now: opts.Now})
		if err != nil {
			return nil, err
		}
		ats := ResolvePlatform(c)
		if opts.Limiter != nil {
			f = ratelimit.NewRateLimitedFetcher(f, opts.Limiter, ats)
		}
		f = retry.NewRetryFetcher(f, opts.MaxAttempts, opts.BaseDelay, opts.Logger)
		if opts.Cache != nil {
			f = cache.NewCachedFetcher(f, opts.Cache, ats, c.ID, opts.Logger)
		}
		return f, nil
	}
}

// ResolvePlatform returns c.ATS, detecting it from the careers URL when unset.
func ResolvePlatform(c model.Company) model.Platform {
	if c.ATS != "" && c.ATS != model.PlatformUnknown {
		return c.ATS
	}
	return adapter.DetectPlatform(c.CareersURL)
}

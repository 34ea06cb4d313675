package cache

import (
	"context"
	"log/slog"

	"github.com/amishk599/marketbrief/internal/model"
)

// Store is the subset of Cache used by CachedFetcher.
type Store interface {
	Get(ctx context.Context, ats model.Platform, companyID string) ([]model.NormalizedPosting, bool, error)
	Set(ctx context.Context, ats model.Platform, companyID string, postings []model.NormalizedPosting) error
}

// CachedFetcher serves postings from a Store when present and fills it after
// a successful upstream fetch. Cache errors are logged and never fail a fetch.
type CachedFetcher struct {
	inner     model.PostingFetcher
	store     Store
	ats       model.Platform
	companyID string
	logger    *slog.Logger
}

// NewCachedFetcher wraps inner so postings for one company are cached under
// its ATS and company id.
func NewCachedFetcher(inner model.PostingFetcher, store Store, ats model.Platform, companyID string, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, store: store, ats: ats, companyID: companyID, logger: logger}
}

// FetchPostings returns cached postings on a hit. On a miss it calls the
// inner fetcher and stores the result. Upstream errors are never cached.
func (f *CachedFetcher) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	postings, ok, err := f.store.Get(ctx, f.ats, f.companyID)
	if err != nil {
		f.logger.Warn("cache read failed", "company_id", f.companyID, "error", err)
	}
	if ok {
		f.logger.Debug("cache hit", "company_id", f.companyID, "postings", len(postings))
		return postings, nil
	}

	postings, err = f.inner.FetchPostings(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.store.Set(ctx, f.ats, f.companyID, postings); err != nil {
		f.logger.Warn("cache write failed", "company_id", f.companyID, "error", err)
	}
	return postings, nil
}

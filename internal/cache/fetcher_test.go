package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

type fakeStore struct {
	data    map[string][]model.NormalizedPosting
	getErr  error
	setErr  error
	setCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]model.NormalizedPosting)}
}

func (s *fakeStore) Get(_ context.Context, ats model.Platform, id string) ([]model.NormalizedPosting, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	p, ok := s.data[Key(ats, id)]
	return p, ok, nil
}

func (s *fakeStore) Set(_ context.Context, ats model.Platform, id string, p []model.NormalizedPosting) error {
	s.setCall++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[Key(ats, id)] = p
	return nil
}

type countingFetcher struct {
	calls    int
	postings []model.NormalizedPosting
	err      error
}

func (f *countingFetcher) FetchPostings(context.Context) ([]model.NormalizedPosting, error) {
	f.calls++
	return f.postings, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var samplePostings = []model.NormalizedPosting{{SourceJobID: "1", CompanyID: "acme", Title: "VP Sales"}}

func TestCachedFetcher_MissThenHit(t *testing.T) {
	store := newFakeStore()
	inner := &countingFetcher{postings: samplePostings}
	f := NewCachedFetcher(inner, store, model.PlatformGreenhouse, "acme", discardLogger())

	for range 3 {
		got, err := f.FetchPostings(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Title != "VP Sales" {
			t.Fatalf("unexpected postings: %+v", got)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
}

func TestCachedFetcher_UpstreamErrorNotCached(t *testing.T) {
	store := newFakeStore()
	inner := &countingFetcher{err: errors.New("boom")}
	f := NewCachedFetcher(inner, store, model.PlatformLever, "acme", discardLogger())

	if _, err := f.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if store.setCall != 0 {
		t.Errorf("expected no cache write on failure, got %d", store.setCall)
	}
}

func TestCachedFetcher_CacheErrorsFallThrough(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	inner := &countingFetcher{postings: samplePostings}
	f := NewCachedFetcher(inner, store, model.PlatformAshby, "acme", discardLogger())

	got, err := f.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("cache failure should not fail fetch: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected upstream postings, got %d", len(got))
	}
}

func TestKey(t *testing.T) {
	a := Key(model.PlatformGreenhouse, "Acme")
	b := Key(model.PlatformGreenhouse, "acme")
	if a != b {
		t.Errorf("keys should be case-insensitive on company: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "marketbrief:greenhouse:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if Key(model.PlatformLever, "acme") == a {
		t.Error("keys should differ across platforms")
	}
}

// Set MARKETBRIEF_TEST_REDIS_URL to run against a live Redis.
func TestRedisCache_RoundTrip(t *testing.T) {
	url := os.Getenv("MARKETBRIEF_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MARKETBRIEF_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := New(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer c.Close()

	id := "cachetest-" + time.Now().Format("150405.000000000")
	if _, ok, err := c.Get(ctx, model.PlatformGreenhouse, id); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, model.PlatformGreenhouse, id, samplePostings); err != nil {
		t.Fatal(err)
	}
	got, ok, err := c.Get(ctx, model.PlatformGreenhouse, id)
	if err != nil || !ok || len(got) != 1 {
		t.Fatalf("expected hit, got %v %v %v", got, ok, err)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New(context.Background(), "not a url", time.Minute); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

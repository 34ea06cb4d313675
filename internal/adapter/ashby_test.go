package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAshbyFetchPostings_Success(t *testing.T) {
	payload := `{
		"apiVersion": "1",
		"jobs": [
			{
				"id": "abc-123",
				"title": "Director of Operations",
				"location": "San Francisco, CA",
				"jobUrl": "https://jobs.ashbyhq.com/acme/abc-123",
				"publishedAt": "2026-02-13T10:00:00Z",
				"isListed": true,
				"isRemote": false
			},
			{
				"id": "def-456",
				"title": "VP Finance",
				"location": "United States",
				"jobUrl": "https://jobs.ashbyhq.com/acme/def-456",
				"isListed": true,
				"isRemote": true
			},
			{
				"id": "ghi-789",
				"title": "Unlisted Role",
				"location": "NYC",
				"jobUrl": "https://jobs.ashbyhq.com/acme/ghi-789",
				"publishedAt": "2026-02-13T12:00:00Z",
				"isListed": false
			}
		]
	}`
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newAshbyTestAdapter(srv, "acme")

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/posting-api/job-board/acme" {
		t.Errorf("requested path %q", gotPath)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings (unlisted filtered), got %d", len(postings))
	}

	p := postings[0]
	if p.SourceJobID != "abc-123" || p.CompanyID != "acme-co" {
		t.Errorf("identity = (%q, %q)", p.SourceJobID, p.CompanyID)
	}
	if p.Title != "Director of Operations" || p.LocationRaw != "San Francisco, CA" {
		t.Errorf("unexpected posting: %+v", p)
	}
	if p.URL != "https://jobs.ashbyhq.com/acme/abc-123" || p.SourceURL != "https://jobs.ashbyhq.com/acme" {
		t.Errorf("urls = (%q, %q)", p.URL, p.SourceURL)
	}
	if want := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC); !p.FirstSeen.Equal(want) {
		t.Errorf("FirstSeen = %v, want %v", p.FirstSeen, want)
	}
	if !p.ScrapedAt.Equal(fixedNow) {
		t.Errorf("ScrapedAt = %v, want %v", p.ScrapedAt, fixedNow)
	}
	if p.IsRemote {
		t.Error("first posting should not be remote")
	}

	if !postings[1].IsRemote {
		t.Error("second posting should be remote")
	}
	if !postings[1].FirstSeen.IsZero() {
		t.Errorf("missing publishedAt should leave FirstSeen zero, got %v", postings[1].FirstSeen)
	}
}

func TestAshbyFetchPostings_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"apiVersion": "1", "jobs": []}`))
	}))
	defer srv.Close()

	postings, err := newAshbyTestAdapter(srv, "empty-co").FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestAshbyFetchPostings_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	_, err := newAshbyTestAdapter(srv, "bad-co").FetchPostings(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
	if !strings.Contains(err.Error(), "ashby fetch for bad-co") {
		t.Errorf("error should name the board: %v", err)
	}
}

func TestAshbyFetchPostings_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newAshbyTestAdapter(srv, "fail-co").FetchPostings(context.Background())
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func newAshbyTestAdapter(srv *httptest.Server, token string) *AshbyAdapter {
	a := NewAshbyAdapter("acme-co", token, "https://jobs.ashbyhq.com/"+token, testClient(srv))
	a.now = fixedClock
	return a
}

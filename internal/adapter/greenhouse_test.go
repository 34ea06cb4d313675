package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

func TestGreenhouseFetchPostings_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 4012345,
				"title": "Head of Revenue Operations",
				"location": {"name": "New York, NY"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/4012345",
				"updated_at": "2026-02-10T08:30:00-05:00"
			},
			{
				"id": 4012346,
				"title": "Senior Accountant",
				"location": {"name": "Remote - US"},
				"absolute_url": "",
				"updated_at": "not a date"
			}
		],
		"meta": {"total": 2}
	}`
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := newGreenhouseTestAdapter(srv, "acme")

	postings, err := a.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/boards/acme/jobs" {
		t.Errorf("requested path %q", gotPath)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.SourceJobID != "4012345" || p.CompanyID != "acme-co" {
		t.Errorf("identity = (%q, %q)", p.SourceJobID, p.CompanyID)
	}
	if p.LocationRaw != "New York, NY" || p.IsRemote {
		t.Errorf("location = (%q, remote=%v)", p.LocationRaw, p.IsRemote)
	}
	if want := time.Date(2026, 2, 10, 13, 30, 0, 0, time.UTC); !p.FirstSeen.Equal(want) {
		t.Errorf("FirstSeen = %v, want %v", p.FirstSeen, want)
	}

	q := postings[1]
	if !q.IsRemote {
		t.Error("Remote - US should be remote")
	}
	if q.URL != "https://boards.greenhouse.io/acme/jobs/4012346" {
		t.Errorf("fallback URL = %q", q.URL)
	}
	if !q.FirstSeen.IsZero() {
		t.Errorf("unparseable updated_at should leave FirstSeen zero, got %v", q.FirstSeen)
	}
}

func TestGreenhouseFetchPostings_EmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs": []}`))
	}))
	defer srv.Close()

	postings, err := newGreenhouseTestAdapter(srv, "empty").FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestGreenhouseFetchPostings_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1, 2, 3]`))
	}))
	defer srv.Close()

	if _, err := newGreenhouseTestAdapter(srv, "bad").FetchPostings(context.Background()); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestGreenhouseFetchPostings_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newGreenhouseTestAdapter(srv, "gone").FetchPostings(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if httpErr.Transient() {
		t.Error("404 should not be transient")
	}
}

func newGreenhouseTestAdapter(srv *httptest.Server, token string) *GreenhouseAdapter {
	a := NewGreenhouseAdapter("acme-co", token, "https://boards.greenhouse.io/"+token, testClient(srv))
	a.now = fixedClock
	return a
}

package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/amishk599/marketbrief/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSummary() model.BriefSummary {
	return model.BriefSummary{
		RunDate:       "2026-06-15",
		TotalRoles:    42,
		StalePct:      30.6,
		StaleDays:     45,
		Functions:     []string{"gtm", "product"},
		TopCompanies:  []string{"Acme (gtm)", "Globex (product)"},
		LayoffCompany: 3,
		ReportPath:    "briefs/brief_20260615.md",
	}
}

func TestSlackNotifier_Payload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(payload.Blocks))
	}

	if got := payload.Blocks[0].Text.Text; got != "📊 Recruiter Market Brief: 2026-06-15" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[0].Text; got != "*Senior roles:*\n42" {
		t.Errorf("roles field = %q", got)
	}
	if got := payload.Blocks[1].Fields[1].Text; got != "*Open 45+ days:*\n~31%" {
		t.Errorf("stale field = %q", got)
	}
	if got := payload.Blocks[3].Text.Text; !strings.Contains(got, "• Acme (gtm)\n• Globex (product)") {
		t.Errorf("hottest section = %q", got)
	}
	if payload.Blocks[4].Type != "context" || !strings.Contains(payload.Blocks[4].Elements[0].Text, "brief_20260615.md") {
		t.Errorf("block[4] = %+v, want context with report path", payload.Blocks[4])
	}
	if payload.Blocks[5].Type != "divider" {
		t.Errorf("block[5] type = %q, want divider", payload.Blocks[5].Type)
	}
}

func TestSlackNotifier_NoReportPath(t *testing.T) {
	s := sampleSummary()
	s.ReportPath = ""
	s.TopCompanies = nil
	p := buildPayload(s)
	if len(p.Blocks) != 5 {
		t.Fatalf("expected 5 blocks without report path, got %d", len(p.Blocks))
	}
	if got := p.Blocks[3].Text.Text; !strings.Contains(got, "No target roles yet") {
		t.Errorf("hottest section = %q", got)
	}
}

func TestSlackNotifier_SlackReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_RateLimitedCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	n := NewSlackNotifier(srv.URL, srv.Client(), slog.New(cancelOnWarn{cancel: cancel}))
	if err := n.Notify(ctx, sampleSummary()); err == nil {
		t.Fatal("expected context error")
	}
}

// cancelOnWarn cancels a context as soon as a warning is logged.
type cancelOnWarn struct {
	cancel context.CancelFunc
}

func (h cancelOnWarn) Enabled(context.Context, slog.Level) bool { return true }
func (h cancelOnWarn) Handle(_ context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		h.cancel()
	}
	return nil
}
func (h cancelOnWarn) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h cancelOnWarn) WithGroup(string) slog.Handler      { return h }

func TestSendTestMessage(t *testing.T) {
	var got model.BriefSummary
	n := notifierFunc(func(_ context.Context, s model.BriefSummary) error {
		got = s
		return nil
	})
	if err := SendTestMessage(context.Background(), n); err != nil {
		t.Fatal(err)
	}
	if got.TotalRoles == 0 || got.RunDate == "" {
		t.Errorf("unexpected test summary: %+v", got)
	}
}

type notifierFunc func(context.Context, model.BriefSummary) error

func (f notifierFunc) Notify(ctx context.Context, s model.BriefSummary) error { return f(ctx, s) }

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *orderRecorder) step(name string, err error) Step {
	return Step{Name: name, Run: func(context.Context) error {
		r.mu.Lock()
		r.order = append(r.order, name)
		r.mu.Unlock()
		return err
	}}
}

func (r *orderRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func TestScheduler_ImmediateCycleThenShutdown(t *testing.T) {
	rec := &orderRecorder{}
	s := NewScheduler([]Step{rec.step("scrape", nil), rec.step("brief", nil)}, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(rec.snapshot()) < 2 {
		select {
		case <-deadline:
			t.Fatal("immediate cycle did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil on shutdown", err)
	}
	got := rec.snapshot()
	if len(got) != 2 || got[0] != "scrape" || got[1] != "brief" {
		t.Errorf("step order = %v, want [scrape brief]", got)
	}
}

func TestScheduler_FailedStepDoesNotStopCycle(t *testing.T) {
	rec := &orderRecorder{}
	s := NewScheduler([]Step{rec.step("scrape", errors.New("all boards down")), rec.step("brief", nil)}, time.Hour, discardLogger())

	s.runCycle(context.Background())

	if got := rec.snapshot(); len(got) != 2 {
		t.Errorf("expected both steps to run, got %v", got)
	}
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler([]Step{{Name: "count", Run: func(context.Context) error {
		calls.Add(1)
		return nil
	}}}, 20*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if c := calls.Load(); c < 3 {
		t.Errorf("expected at least 3 cycles, got %d", c)
	}
}

func TestScheduler_CancelledSkipsRemainingSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &orderRecorder{}
	first := Step{Name: "scrape", Run: func(context.Context) error {
		cancel()
		return nil
	}}
	s := NewScheduler([]Step{first, rec.step("brief", nil)}, time.Hour, discardLogger())

	s.runCycle(ctx)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected brief to be skipped after cancellation, got %v", got)
	}
}

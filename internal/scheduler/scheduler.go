// Package scheduler repeats the scrape and brief cycle on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Step is one stage of a cycle, such as "scrape" or "brief".
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler owns the main loop: ticks on an interval and runs each step sequentially.
type Scheduler struct {
	steps    []Step
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs steps at the given interval.
func NewScheduler(steps []Step, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		steps:    steps,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"steps", len(s.steps),
	)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle runs every step in order. A failed step is logged and the next
// one still runs: a brief is built even when the scrape failed.
func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	for _, step := range s.steps {
		if ctx.Err() != nil {
			return
		}
		if err := step.Run(ctx); err != nil {
			s.logger.Error("step failed", "step", step.Name, "error", err)
		}
	}
	s.logger.Info("cycle complete", "duration", time.Since(start).Round(time.Millisecond).String())
}

// Package workpool provides a bounded worker pool shared across a run.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool caps how many tasks run at once. One Pool is meant to be created per
// run and reused by every batch in it; concurrent batches share the cap.
type Pool struct {
	sem chan struct{}
}

// New returns a pool running at most workers tasks concurrently. Values below
// 1 become 1.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{sem: make(chan struct{}, workers)}
}

// Size returns the concurrency cap.
func (p *Pool) Size() int { return cap(p.sem) }

// Map runs fn for every item and waits for all of them. Results are returned
// in input order. fn reports failures through its result; one item failing
// does not stop the others. Items not yet started when ctx is cancelled are
// skipped and keep the zero R.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) R) []R {
	results := make([]R, len(items))

	var g errgroup.Group
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			_ = g.Wait()
			return results
		}

		g.Go(func() error {
			defer func() { <-p.sem }()
			results[i] = fn(ctx, item)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Package scrape runs a scrape cycle: every company is fetched through its
// adapter chain on a bounded worker pool, classified and upserted.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/marketbrief/internal/adapter"
	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/process"
	"github.com/amishk599/marketbrief/internal/store"
	"github.com/amishk599/marketbrief/internal/workpool"
)

// Repository is the storage a run needs.
type Repository interface {
	PostingWriter
	UpsertCompanies(ctx context.Context, companies []model.Company, now time.Time) (int, error)
	LoadCompanies(ctx context.Context) ([]model.Company, error)
	RecordRun(ctx context.Context, r store.Run) error
}

// Runner executes scrape cycles.
type Runner struct {
	repo      Repository
	factory   FetcherFactory
	processor *process.Processor
	pool      *workpool.Pool
	now       func() time.Time
	logger    *slog.Logger
}

// NewRunner creates a runner. pool bounds concurrent company fetches.
func NewRunner(repo Repository, factory FetcherFactory, processor *process.Processor, pool *workpool.Pool, logger *slog.Logger) *Runner {
	return &Runner{
		repo:      repo,
		factory:   factory,
		processor: processor,
		pool:      pool,
		now:       time.Now,
		logger:    logger,
	}
}

// Summary reports the outcome of one run.
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CompanyResult
	Found      int
	Empty      int
	Failed     int
	Skipped    int
	Postings   int
	Upserted   int
	Rejected   int // postings the store could not write
}

// Run syncs configured into the company registry and scrapes. When
// configured is empty the stored registry (for example discovered
// companies) is scraped instead.
func (r *Runner) Run(ctx context.Context, configured []model.Company) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString(), StartedAt: r.now().UTC()}

	companies, err := r.companies(ctx, configured)
	if err != nil {
		return nil, err
	}
	r.logger.Info("starting scrape run", "run_id", sum.RunID, "companies", len(companies), "workers", r.pool.Size())

	var scrapers []*CompanyScraper
	for _, c := range companies {
		f, err := r.factory(c)
		if err != nil {
			level := slog.LevelError
			if errors.Is(err, adapter.ErrUnsupportedPlatform) {
				level = slog.LevelWarn
			}
			r.logger.Log(ctx, level, "skipping company", "company", c.ID, "careers_url", c.CareersURL, "error", err)
			sum.Results = append(sum.Results, CompanyResult{FetchResult: model.FetchResult{
				CompanyID: c.ID, Status: model.FetchSkipped, Err: err,
			}})
			continue
		}
		scrapers = append(scrapers, NewCompanyScraper(c, f, r.processor, r.repo, r.logger))
	}

	results := workpool.Map(ctx, r.pool, scrapers, func(ctx context.Context, s *CompanyScraper) CompanyResult {
		return s.Scrape(ctx)
	})
	for i, res := range results {
		// Map leaves zero results for items it never started.
		if res.Status == "" {
			res.CompanyID = scrapers[i].Company.ID
			res.Status = model.FetchFailed
			res.Err = ctx.Err()
		}
		sum.Results = append(sum.Results, res)
	}

	sum.FinishedAt = r.now().UTC()
	sum.tally()

	run := store.Run{
		ID:               sum.RunID,
		StartedAt:        sum.StartedAt,
		FinishedAt:       sum.FinishedAt,
		Companies:        len(sum.Results),
		Found:            sum.Found,
		Empty:            sum.Empty,
		Failed:           sum.Failed,
		Skipped:          sum.Skipped,
		PostingsUpserted: sum.Upserted,
		PostingsFailed:   sum.Rejected,
	}
	if err := r.repo.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.Warn("failed to record scrape run", "run_id", sum.RunID, "error", err)
	}

	r.logger.Info("scrape run complete",
		"run_id", sum.RunID,
		"found", sum.Found,
		"empty", sum.Empty,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"upserted", sum.Upserted,
		"duration", sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond).String(),
	)
	return sum, nil
}

func (r *Runner) companies(ctx context.Context, configured []model.Company) ([]model.Company, error) {
	if len(configured) > 0 {
		synced := make([]model.Company, len(configured))
		for i, c := range configured {
			c.ATS = ResolvePlatform(c)
			synced[i] = c
		}
		if _, err := r.repo.UpsertCompanies(ctx, synced, r.now()); err != nil {
			r.logger.Warn("company registry sync failed", "error", err)
		}
		return synced, nil
	}
	companies, err := r.repo.LoadCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading company registry: %w", err)
	}
	return companies, nil
}

func (s *Summary) tally() {
	for _, res := range s.Results {
		switch res.Status {
		case model.FetchFound:
			s.Found++
		case model.FetchEmpty:
			s.Empty++
		case model.FetchFailed:
			s.Failed++
		case model.FetchSkipped:
			s.Skipped++
		}
		s.Postings += len(res.Postings)
		s.Upserted += res.Upserted
		s.Rejected += res.Failed
	}
}

// Print writes a human-readable summary to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\nScrape run %s\n", s.RunID)
	fmt.Fprintf(w, "  companies: %d (found %d, empty %d, failed %d, skipped %d)\n",
		len(s.Results), s.Found, s.Empty, s.Failed, s.Skipped)
	fmt.Fprintf(w, "  postings:  %d fetched, %d upserted, %d failed\n", s.Postings, s.Upserted, s.Rejected)
	for _, res := range s.Results {
		if res.Err == nil {
			continue
		}
		fmt.Fprintf(w, "  %-8s %s: %v\n", res.Status, res.CompanyID, res.Err)
	}
}

package scrape

import (
	"context"
	"log/slog"

	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/process"
	"github.com/amishk599/marketbrief/internal/store"
)

// PostingWriter persists processed postings.
type PostingWriter interface {
	UpsertPostings(ctx context.Context, postings []model.ProcessedPosting) (store.UpsertResult, error)
}

// CompanyScraper owns the pipeline for a single company:
// fetch → classify → upsert.
type CompanyScraper struct {
	Company   model.Company
	fetcher   model.PostingFetcher
	processor *process.Processor
	writer    PostingWriter
	logger    *slog.Logger
}

// NewCompanyScraper creates a scraper wired with all its dependencies.
func NewCompanyScraper(
	company model.Company,
	fetcher model.PostingFetcher,
	processor *process.Processor,
	writer PostingWriter,
	logger *slog.Logger,
) *CompanyScraper {
	return &CompanyScraper{
		Company:   company,
		fetcher:   fetcher,
		processor: processor,
		writer:    writer,
		logger:    logger,
	}
}

// CompanyResult is the outcome of scraping one company.
type CompanyResult struct {
	model.FetchResult
	Upserted int
	Failed   int
}

// Scrape runs one cycle for the company. It never returns an error: fetch
// and storage failures are reported through the result.
func (s *CompanyScraper) Scrape(ctx context.Context) CompanyResult {
	postings, err := s.fetcher.FetchPostings(ctx)
	res := CompanyResult{FetchResult: model.NewFetchResult(s.Company.ID, postings, err)}

	switch res.Status {
	case model.FetchFailed:
		s.logger.Error("scrape failed", "company", s.Company.ID, "ats", s.Company.ATS, "error", res.Err)
		return res
	case model.FetchEmpty:
		s.logger.Info("scraped company", "company", s.Company.ID, "status", res.Status, "postings", 0)
		return res
	}

	processed := s.processor.ProcessAll(res.Postings)
	written, err := s.writer.UpsertPostings(ctx, processed)
	res.Upserted, res.Failed = written.Upserted, written.Failed
	if err != nil {
		// Only context cancellation stops an upsert early; count the rest as failed.
		res.Failed = len(processed) - res.Upserted
		s.logger.Error("storing postings failed", "company", s.Company.ID, "error", err)
	}

	s.logger.Info("scraped company",
		"company", s.Company.ID,
		"status", res.Status,
		"postings", len(res.Postings),
		"upserted", res.Upserted,
		"failed", res.Failed,
	)
	return res
}

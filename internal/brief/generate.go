package brief

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// Source supplies the stored data a brief is built from.
type Source interface {
	LoadJobs(ctx context.Context) ([]model.Job, error)
	CompanyNames(ctx context.Context) (map[string]string, error)
	LoadLayoffs(ctx context.Context, since time.Time) ([]model.LayoffEvent, error)
}

// Report is the output of one Generate call.
type Report struct {
	Brief     *Brief
	Markdown  string
	BriefPath string
	FactsPath string
}

// Generator runs report cycles: load, aggregate, render, persist, notify.
type Generator struct {
	source   Source
	writer   *Writer
	notifier model.Notifier // optional
	opts     Options
	terms    ScopeTerms
	now      func() time.Time
	logger   *slog.Logger
}

// NewGenerator creates a generator. writer and notifier may be nil.
func NewGenerator(source Source, writer *Writer, notifier model.Notifier, opts Options, terms ScopeTerms, logger *slog.Logger) *Generator {
	return &Generator{
		source:   source,
		writer:   writer,
		notifier: notifier,
		opts:     opts,
		terms:    terms,
		now:      time.Now,
		logger:   logger,
	}
}

// Generate builds the brief from the current store contents. Only a failure
// to load postings is returned; missing company names or layoff data degrade
// to ids and the placeholder section.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	now := g.now().UTC()

	jobs, err := g.source.LoadJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("generating brief: %w", err)
	}

	names, err := g.source.CompanyNames(ctx)
	if err != nil {
		g.logger.Warn("company names unavailable, using ids", "error", err)
		names = nil
	}

	var layoffs []model.LayoffEvent
	if g.opts.LayoffWindowDays > 0 {
		since := now.AddDate(0, 0, -g.opts.LayoffWindowDays)
		layoffs, err = g.source.LoadLayoffs(ctx, since)
		if err != nil {
			g.logger.Warn("layoff events unavailable", "error", err)
			layoffs = nil
		}
	}

	b := Build(jobs, names, layoffs, g.opts, g.terms, now)
	r := &Report{Brief: b, Markdown: Render(b)}
	if g.writer != nil {
		r.BriefPath, r.FactsPath = g.writer.Write(b, r.Markdown)
	}

	g.logger.Info("brief generated",
		"jobs", len(jobs),
		"target_roles", len(b.Jobs),
		"stale_pct", fmt.Sprintf("%.0f", b.StalePct()),
		"layoff_companies", b.LayoffCompanies(),
		"brief_path", r.BriefPath,
		"facts_path", r.FactsPath,
	)

	if g.notifier != nil {
		if err := g.notifier.Notify(ctx, b.Summary(r.BriefPath)); err != nil {
			g.logger.Error("brief notification failed", "error", err)
		}
	}
	return r, nil
}

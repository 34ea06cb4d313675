package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

const (
	tableCompanies = "companies"
	tablePostings  = "job_postings"
	tableLayoffs   = "layoff_events"
	tableRuns      = "scrape_runs"
)

// DefaultBatchSize is the number of postings written per upsert statement.
const DefaultBatchSize = 100

var postingKeys = []string{"source_job_id", "company_id"}

var jobColumns = []string{"company_id", "title", "function", "level", "first_seen"}

// Store maps domain records onto a Backend.
type Store struct {
	backend   Backend
	logger    *slog.Logger
	batchSize int
}

// New wraps backend. A non-positive batchSize falls back to DefaultBatchSize.
func New(backend Backend, batchSize int, logger *slog.Logger) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Store{backend: backend, logger: logger, batchSize: batchSize}
}

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }

// UpsertResult counts the outcome of an UpsertPostings call.
type UpsertResult struct {
	Upserted int
	Failed   int
}

// UpsertPostings writes postings keyed by (source_job_id, company_id) in
// batches. Duplicate keys inside the input keep the last occurrence. When a
// batch fails each of its records is retried alone so one bad record cannot
// sink its neighbours.
func (s *Store) UpsertPostings(ctx context.Context, postings []model.ProcessedPosting) (UpsertResult, error) {
	var res UpsertResult
	rows := dedupePostings(postings)

	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+s.batchSize, len(rows))
		batch := rows[start:end]

		n, err := s.backend.Upsert(ctx, tablePostings, batch, postingKeys)
		if err == nil {
			res.Upserted += n
			continue
		}
		s.logger.Warn("batch upsert failed, retrying per record",
			"batch_start", start, "batch_size", len(batch), "error", err)

		for _, r := range batch {
			if _, err := s.backend.Upsert(ctx, tablePostings, []Row{r}, postingKeys); err != nil {
				res.Failed++
				s.logger.Error("posting upsert failed",
					"company_id", r["company_id"], "source_job_id", r["source_job_id"], "error", err)
				continue
			}
			res.Upserted++
		}
	}
	return res, nil
}

func dedupePostings(postings []model.ProcessedPosting) []Row {
	index := make(map[model.PostingKey]int, len(postings))
	rows := make([]Row, 0, len(postings))
	for _, p := range postings {
		r := postingRow(p)
		if i, ok := index[p.Key()]; ok {
			rows[i] = r
			continue
		}
		index[p.Key()] = len(rows)
		rows = append(rows, r)
	}
	return rows
}

func postingRow(p model.ProcessedPosting) Row {
	return Row{
		"source_job_id":  p.SourceJobID,
		"company_id":     p.CompanyID,
		"title":          p.Title,
		"url":            p.URL,
		"first_seen":     p.FirstSeen.UTC(),
		"location_raw":   nullString(p.LocationRaw),
		"is_remote":      p.IsRemote,
		"source_url":     p.SourceURL,
		"scraped_at":     p.ScrapedAt.UTC(),
		"function":       nullString(string(p.Function)),
		"level":          nullString(string(p.Level)),
		"location_city":  derefString(p.LocationCity),
		"location_state": derefString(p.LocationState),
	}
}

// LoadJobs reads every stored posting as a Job.
func (s *Store) LoadJobs(ctx context.Context) ([]model.Job, error) {
	return s.LoadJobsWhere(ctx)
}

// LoadJobsWhere reads the postings matching filters, for example
// Eq("function", "gtm").
func (s *Store) LoadJobsWhere(ctx context.Context, filters ...Filter) ([]model.Job, error) {
	rows, err := s.backend.Select(ctx, tablePostings, jobColumns, filters)
	if err != nil {
		return nil, fmt.Errorf("loading jobs: %w", err)
	}
	jobs := make([]model.Job, 0, len(rows))
	for _, r := range rows {
		firstSeen, err := asTime(r["first_seen"])
		if err != nil {
			s.logger.Warn("skipping job with bad first_seen", "company_id", r["company_id"], "error", err)
			continue
		}
		jobs = append(jobs, model.Job{
			CompanyID: asString(r["company_id"]),
			Title:     asString(r["title"]),
			Function:  model.Function(asString(r["function"])),
			Level:     model.Level(asString(r["level"])),
			FirstSeen: firstSeen,
		})
	}
	return jobs, nil
}

// UpsertCompanies writes the company registry keyed by id.
func (s *Store) UpsertCompanies(ctx context.Context, companies []model.Company, now time.Time) (int, error) {
	if len(companies) == 0 {
		return 0, nil
	}
	seen := make(map[string]int, len(companies))
	rows := make([]Row, 0, len(companies))
	for _, c := range companies {
		r := Row{
			"id":          c.ID,
			"name":        c.Name,
			"ats":         string(c.ATS),
			"careers_url": c.CareersURL,
			"board_token": c.BoardToken,
			"updated_at":  now.UTC(),
		}
		if i, ok := seen[c.ID]; ok {
			rows[i] = r
			continue
		}
		seen[c.ID] = len(rows)
		rows = append(rows, r)
	}
	n, err := s.backend.Upsert(ctx, tableCompanies, rows, []string{"id"})
	if err != nil {
		return 0, fmt.Errorf("upserting companies: %w", err)
	}
	return n, nil
}

// LoadCompanies reads the company registry.
func (s *Store) LoadCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.backend.Select(ctx, tableCompanies,
		[]string{"id", "name", "ats", "careers_url", "board_token"}, nil)
	if err != nil {
		return nil, fmt.Errorf("loading companies: %w", err)
	}
	out := make([]model.Company, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Company{
			ID:         asString(r["id"]),
			Name:       asString(r["name"]),
			ATS:        model.ParsePlatform(asString(r["ats"])),
			CareersURL: asString(r["careers_url"]),
			BoardToken: asString(r["board_token"]),
		})
	}
	return out, nil
}

// CompanyNames maps company id to display name.
func (s *Store) CompanyNames(ctx context.Context) (map[string]string, error) {
	companies, err := s.LoadCompanies(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.DisplayName()
	}
	return names, nil
}

// UpsertLayoffs writes layoff events keyed by (company_norm, event_date).
func (s *Store) UpsertLayoffs(ctx context.Context, events []model.LayoffEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	type key struct{ norm, date string }
	seen := make(map[key]int, len(events))
	rows := make([]Row, 0, len(events))
	for _, e := range events {
		date := e.EventDate.UTC().Format(time.DateOnly)
		r := Row{
			"company_norm":       e.CompanyNorm,
			"event_date":         date,
			"company_name":       e.CompanyName,
			"employees_affected": e.EmployeesAffected,
			"geography":          e.Geography,
			"function_tags":      strings.Join(e.FunctionTags, ","),
		}
		k := key{e.CompanyNorm, date}
		if i, ok := seen[k]; ok {
			rows[i] = r
			continue
		}
		seen[k] = len(rows)
		rows = append(rows, r)
	}

	written := 0
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		n, err := s.backend.Upsert(ctx, tableLayoffs, rows[start:end], []string{"company_norm", "event_date"})
		if err != nil {
			return written, fmt.Errorf("upserting layoff events: %w", err)
		}
		written += n
	}
	return written, nil
}

// LoadLayoffs reads layoff events dated on or after since. A zero since
// returns every event.
func (s *Store) LoadLayoffs(ctx context.Context, since time.Time) ([]model.LayoffEvent, error) {
	var filters []Filter
	if !since.IsZero() {
		filters = append(filters, Gte("event_date", since.UTC().Format(time.DateOnly)))
	}
	rows, err := s.backend.Select(ctx, tableLayoffs,
		[]string{"company_norm", "event_date", "company_name", "employees_affected", "geography", "function_tags"},
		filters)
	if err != nil {
		return nil, fmt.Errorf("loading layoff events: %w", err)
	}
	out := make([]model.LayoffEvent, 0, len(rows))
	for _, r := range rows {
		date, err := asTime(r["event_date"])
		if err != nil {
			s.logger.Warn("skipping layoff event with bad date", "company", r["company_norm"], "error", err)
			continue
		}
		var tags []string
		if raw := asString(r["function_tags"]); raw != "" {
			tags = strings.Split(raw, ",")
		}
		out = append(out, model.LayoffEvent{
			CompanyNorm:       asString(r["company_norm"]),
			CompanyName:       asString(r["company_name"]),
			EventDate:         date,
			EmployeesAffected: asIntPtr(r["employees_affected"]),
			Geography:         asStringPtr(r["geography"]),
			FunctionTags:      tags,
		})
	}
	return out, nil
}

// Run is the bookkeeping record of one scrape cycle.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       time.Time
	Companies        int
	Found            int
	Empty            int
	Failed           int
	Skipped          int
	PostingsUpserted int
	PostingsFailed   int
}

// RecordRun stores a scrape run.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	row := Row{
		"id":                r.ID,
		"started_at":        r.StartedAt.UTC(),
		"finished_at":       r.FinishedAt.UTC(),
		"companies":         r.Companies,
		"found":             r.Found,
		"empty":             r.Empty,
		"failed":            r.Failed,
		"skipped":           r.Skipped,
		"postings_upserted": r.PostingsUpserted,
		"postings_failed":   r.PostingsFailed,
	}
	if _, err := s.backend.Upsert(ctx, tableRuns, []Row{row}, []string{"id"}); err != nil {
		return fmt.Errorf("recording scrape run: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func derefString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

package brief

import (
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// Options controls what a brief covers.
type Options struct {
	TargetFunctions  []model.Function
	TargetLevels     []model.Level
	StaleDays        int
	TopCompanies     int
	HighScopeLimit   int
	LayoffWindowDays int
	LayoffLimit      int
}

// DefaultOptions returns the senior-role brief defaults.
func DefaultOptions() Options {
	return Options{
		TargetFunctions: []model.Function{
			model.FunctionGTM, model.FunctionProduct, model.FunctionOperations, model.FunctionFinance,
		},
		TargetLevels:     []model.Level{model.LevelManager, model.LevelDirector, model.LevelVP, model.LevelSVP, model.LevelCLevel},
		StaleDays:        45,
		TopCompanies:     10,
		HighScopeLimit:   15,
		LayoffWindowDays: 60,
		LayoffLimit:      10,
	}
}

// Brief is the aggregated state of one report run.
type Brief struct {
	GeneratedAt time.Time
	Options     Options

	// Jobs are the targeted, scored jobs.
	Jobs         []model.Job
	Volume       map[VolumeKey]int
	Staleness    map[model.Function]Staleness
	TopCompanies map[model.Function][]CompanyCount
	HighScope    []ScoredJob

	// Layoffs are the events inside the layoff window.
	Layoffs       []model.LayoffEvent
	LayoffSummary []LayoffAggregate
}

// Build runs every aggregation over jobs using a single now.
func Build(jobs []model.Job, companyNames map[string]string, layoffs []model.LayoffEvent, opts Options, terms ScopeTerms, now time.Time) *Brief {
	target := FilterTarget(jobs, opts.TargetFunctions, opts.TargetLevels)
	Score(target, terms)

	recent := RecentLayoffs(layoffs, now, opts.LayoffWindowDays)

	return &Brief{
		GeneratedAt:   now,
		Options:       opts,
		Jobs:          target,
		Volume:        ComputeVolume(target),
		Staleness:     ComputeStaleness(target, now, opts.StaleDays),
		TopCompanies:  ComputeTopCompanies(target, companyNames, opts.TopCompanies),
		HighScope:     RankHighScope(target, opts.HighScopeLimit),
		Layoffs:       recent,
		LayoffSummary: AggregateLayoffs(recent, opts.LayoffLimit),
	}
}

// TotalStale sums stale postings across functions.
func (b *Brief) TotalStale() int {
	n := 0
	for _, s := range b.Staleness {
		n += s.Stale
	}
	return n
}

// StalePct is the overall stale share of targeted jobs in percent.
func (b *Brief) StalePct() float64 {
	if len(b.Jobs) == 0 {
		return 0
	}
	return float64(b.TotalStale()) / float64(len(b.Jobs)) * 100
}

// FunctionsPresent lists the functions that have at least one targeted job.
func (b *Brief) FunctionsPresent() []model.Function {
	fs := make([]model.Function, 0, len(b.Jobs))
	for _, j := range b.Jobs {
		fs = append(fs, j.Function)
	}
	return sortedFunctions(fs)
}

// LayoffCompanies counts distinct normalized companies in the layoff window.
func (b *Brief) LayoffCompanies() int {
	seen := make(map[string]bool, len(b.Layoffs))
	for _, ev := range b.Layoffs {
		seen[ev.CompanyNorm] = true
	}
	return len(seen)
}

// Summary returns the short form sent to notifiers.
func (b *Brief) Summary(reportPath string) model.BriefSummary {
	s := model.BriefSummary{
		RunDate:       b.GeneratedAt.UTC().Format("2006-01-02"),
		TotalRoles:    len(b.Jobs),
		StalePct:      b.StalePct(),
		StaleDays:     b.Options.StaleDays,
		LayoffCompany: b.LayoffCompanies(),
		ReportPath:    reportPath,
	}
	for _, f := range b.FunctionsPresent() {
		s.Functions = append(s.Functions, string(f))
		if top := b.TopCompanies[f]; len(top) > 0 {
			s.TopCompanies = append(s.TopCompanies, top[0].Name+" ("+string(f)+")")
		}
	}
	return s
}

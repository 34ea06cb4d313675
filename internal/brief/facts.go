package brief

import (
	"time"
)

// Facts is the machine-readable snapshot of a brief. It carries every number
// the markdown shows.
type Facts struct {
	GeneratedAt           time.Time                 `json:"generated_at"`
	TotalRoles            int                       `json:"total_roles"`
	Functions             []string                  `json:"functions"`
	TargetFunctions       []string                  `json:"target_functions"`
	TargetLevels          []string                  `json:"target_levels"`
	StaleDays             int                       `json:"stale_days"`
	TotalStale            int                       `json:"total_stale"`
	StalePct              float64                   `json:"stale_pct"`
	VolumeByFunctionLevel map[string]int            `json:"volume_by_function_level"`
	StalenessByFunction   map[string]StalenessFact  `json:"staleness_by_function"`
	TopCompanies          map[string][]CompanyCount `json:"top_companies"`
	LayoffEventsCount     int                       `json:"layoff_events_count"`
	LayoffCompaniesCount  int                       `json:"layoff_companies_count"`
	LayoffCompanies       []LayoffAggregate         `json:"layoff_companies"`
	HighScopeRoles        []HighScopeFact           `json:"high_scope_roles"`
}

// StalenessFact is one row of the staleness table.
type StalenessFact struct {
	Fresh    int     `json:"fresh"`
	Stale    int     `json:"stale"`
	StalePct float64 `json:"stale_pct"`
}

// HighScopeFact is one row of the high-scope roles table.
type HighScopeFact struct {
	Title     string `json:"title"`
	CompanyID string `json:"company_id"`
	Function  string `json:"function"`
	Level     string `json:"level"`
	Score     int    `json:"score"`
}

// BuildFacts converts b into its JSON snapshot. Volume keys are
// "function|level". Every target function has a staleness entry, zero or not.
func BuildFacts(b *Brief) Facts {
	f := Facts{
		GeneratedAt:           b.GeneratedAt.UTC(),
		TotalRoles:            len(b.Jobs),
		Functions:             []string{},
		StaleDays:             b.Options.StaleDays,
		TotalStale:            b.TotalStale(),
		StalePct:              b.StalePct(),
		VolumeByFunctionLevel: make(map[string]int, len(b.Volume)),
		StalenessByFunction:   make(map[string]StalenessFact),
		TopCompanies:          make(map[string][]CompanyCount, len(b.TopCompanies)),
		LayoffEventsCount:     len(b.Layoffs),
		LayoffCompaniesCount:  b.LayoffCompanies(),
		LayoffCompanies:       append([]LayoffAggregate{}, b.LayoffSummary...),
		HighScopeRoles:        make([]HighScopeFact, 0, len(b.HighScope)),
	}
	for _, fn := range b.FunctionsPresent() {
		f.Functions = append(f.Functions, string(fn))
	}
	for _, fn := range sortedFunctions(b.Options.TargetFunctions) {
		f.TargetFunctions = append(f.TargetFunctions, string(fn))
		s := b.Staleness[fn]
		f.StalenessByFunction[string(fn)] = StalenessFact{Fresh: s.Fresh, Stale: s.Stale, StalePct: s.StalePct()}
	}
	for _, l := range b.Options.TargetLevels {
		f.TargetLevels = append(f.TargetLevels, string(l))
	}
	for k, n := range b.Volume {
		f.VolumeByFunctionLevel[string(k.Function)+"|"+string(k.Level)] = n
	}
	for fn, top := range b.TopCompanies {
		f.TopCompanies[string(fn)] = top
	}
	for _, j := range b.HighScope {
		f.HighScopeRoles = append(f.HighScopeRoles, HighScopeFact{
			Title:     j.Title,
			CompanyID: j.CompanyID,
			Function:  string(j.Function),
			Level:     string(j.Level),
			Score:     j.Score,
		})
	}
	return f
}

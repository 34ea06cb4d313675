// Package brief aggregates stored postings into the recruiter market brief
// and renders it as markdown and a JSON facts snapshot.
package brief

import (
	"math"
	"sort"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// VolumeKey is one cell of the function x level volume table.
type VolumeKey struct {
	Function model.Function
	Level    model.Level
}

// Staleness counts fresh and stale postings of one function.
type Staleness struct {
	Fresh int `json:"fresh"`
	Stale int `json:"stale"`
}

// Total returns Fresh + Stale.
func (s Staleness) Total() int { return s.Fresh + s.Stale }

// StalePct returns the stale share in percent, or 0 when there are no
// postings.
func (s Staleness) StalePct() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Stale) / float64(s.Total()) * 100
}

// CompanyCount is one entry of a top-companies ranking.
type CompanyCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FilterTarget keeps jobs whose function and level are both targeted.
// Unknown values never match. Input order is preserved.
func FilterTarget(jobs []model.Job, functions []model.Function, levels []model.Level) []model.Job {
	fs := make(map[model.Function]bool, len(functions))
	for _, f := range functions {
		if f.Known() {
			fs[f] = true
		}
	}
	ls := make(map[model.Level]bool, len(levels))
	for _, l := range levels {
		if l.Known() {
			ls[l] = true
		}
	}

	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if fs[j.Function] && ls[j.Level] {
			out = append(out, j)
		}
	}
	return out
}

// ComputeVolume tallies jobs per (function, level). Jobs missing either value
// are not counted and absent combinations have no entry.
func ComputeVolume(jobs []model.Job) map[VolumeKey]int {
	out := make(map[VolumeKey]int)
	for _, j := range jobs {
		if !j.Function.Known() || !j.Level.Known() {
			continue
		}
		out[VolumeKey{Function: j.Function, Level: j.Level}]++
	}
	return out
}

// AgeDays returns the whole number of days between firstSeen and now,
// rounded down.
func AgeDays(now, firstSeen time.Time) int {
	return int(math.Floor(now.Sub(firstSeen).Hours() / 24))
}

// ComputeStaleness buckets jobs per function. A job is stale when its age in
// whole days is at least staleDays. Jobs without a function are skipped.
func ComputeStaleness(jobs []model.Job, now time.Time, staleDays int) map[model.Function]Staleness {
	out := make(map[model.Function]Staleness)
	for _, j := range jobs {
		if !j.Function.Known() {
			continue
		}
		s := out[j.Function]
		if AgeDays(now, j.FirstSeen) >= staleDays {
			s.Stale++
		} else {
			s.Fresh++
		}
		out[j.Function] = s
	}
	return out
}

// ComputeTopCompanies ranks companies by posting count within each function,
// highest first with ties ordered by name. Company ids missing from names are
// shown as the id.
func ComputeTopCompanies(jobs []model.Job, names map[string]string, topN int) map[model.Function][]CompanyCount {
	counts := make(map[model.Function]map[string]int)
	for _, j := range jobs {
		if !j.Function.Known() {
			continue
		}
		if counts[j.Function] == nil {
			counts[j.Function] = make(map[string]int)
		}
		counts[j.Function][j.CompanyID]++
	}

	out := make(map[model.Function][]CompanyCount, len(counts))
	for f, byCompany := range counts {
		ranked := make([]CompanyCount, 0, len(byCompany))
		for id, n := range byCompany {
			name := names[id]
			if name == "" {
				name = id
			}
			ranked = append(ranked, CompanyCount{Name: name, Count: n})
		}
		sort.Slice(ranked, func(a, b int) bool {
			if ranked[a].Count != ranked[b].Count {
				return ranked[a].Count > ranked[b].Count
			}
			return ranked[a].Name < ranked[b].Name
		})
		if topN > 0 && len(ranked) > topN {
			ranked = ranked[:topN]
		}
		out[f] = ranked
	}
	return out
}

// sortedFunctions returns the known functions of fs in lexical order,
// without duplicates.
func sortedFunctions(fs []model.Function) []model.Function {
	seen := make(map[model.Function]bool, len(fs))
	out := make([]model.Function, 0, len(fs))
	for _, f := range fs {
		if f.Known() && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

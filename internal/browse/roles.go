// Package browse is the interactive role browser: pick a function, then page
// through its roles ranked by title scope score.
package browse

import (
	"sort"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/model"
)

// Role is one stored posting as shown in the browser.
type Role struct {
	model.Job
	Company string
	AgeDays int
	Score   int
}

// FunctionCount is a picker entry.
type FunctionCount struct {
	Function model.Function
	Roles    int
}

// CountByFunction tallies jobs per function in the given order. Functions
// with no roles are still listed so the picker is stable between runs.
func CountByFunction(jobs []model.Job, functions []model.Function) []FunctionCount {
	counts := make(map[model.Function]int)
	for _, j := range jobs {
		counts[j.Function]++
	}
	out := make([]FunctionCount, 0, len(functions))
	for _, f := range functions {
		out = append(out, FunctionCount{Function: f, Roles: counts[f]})
	}
	return out
}

// RankRoles scores the jobs of fn and orders them by scope score, newest
// first within a score, then by title.
func RankRoles(jobs []model.Job, fn model.Function, names map[string]string, terms brief.ScopeTerms, now time.Time) []Role {
	var roles []Role
	for _, j := range jobs {
		if j.Function != fn {
			continue
		}
		j.StrategyScore, j.ExecutionScore, j.CrossFunctionalScore, j.LeadershipScore, j.PeopleMgmt = brief.ScoreTitle(j.Title, terms)
		company := names[j.CompanyID]
		if company == "" {
			company = j.CompanyID
		}
		roles = append(roles, Role{
			Job:     j,
			Company: company,
			AgeDays: brief.AgeDays(now, j.FirstSeen),
			Score:   j.ScopeScore(),
		})
	}
	sort.SliceStable(roles, func(a, b int) bool {
		if roles[a].Score != roles[b].Score {
			return roles[a].Score > roles[b].Score
		}
		if !roles[a].FirstSeen.Equal(roles[b].FirstSeen) {
			return roles[a].FirstSeen.After(roles[b].FirstSeen)
		}
		return strings.ToLower(roles[a].Title) < strings.ToLower(roles[b].Title)
	})
	return roles
}

func levelLabel(l model.Level) string {
	if !l.Known() {
		return "unleveled"
	}
	return string(l)
}

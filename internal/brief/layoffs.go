package brief

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// LayoffAggregate sums the layoff events of one normalized company.
type LayoffAggregate struct {
	CompanyNorm string    `json:"company_norm"`
	CompanyName string    `json:"company_name"`
	Employees   int       `json:"employees_affected"`
	Events      int       `json:"events"`
	Latest      time.Time `json:"latest_event"`
	Functions   []string  `json:"functions"`
}

// RecentLayoffs keeps events dated within the last days calendar days of now.
func RecentLayoffs(events []model.LayoffEvent, now time.Time, days int) []model.LayoffEvent {
	today := civilDate(now)
	cutoff := today.AddDate(0, 0, -days)
	out := make([]model.LayoffEvent, 0, len(events))
	for _, ev := range events {
		if civilDate(ev.EventDate).Before(cutoff) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// AggregateLayoffs groups events by normalized company, ranked by employees
// affected (then name) and truncated to limit.
func AggregateLayoffs(events []model.LayoffEvent, limit int) []LayoffAggregate {
	byCompany := make(map[string]*LayoffAggregate)
	tags := make(map[string]map[string]bool)
	var order []string
	for _, ev := range events {
		agg, ok := byCompany[ev.CompanyNorm]
		if !ok {
			name := ev.CompanyName
			if name == "" {
				name = ev.CompanyNorm
			}
			agg = &LayoffAggregate{CompanyNorm: ev.CompanyNorm, CompanyName: name, Latest: ev.EventDate}
			byCompany[ev.CompanyNorm] = agg
			tags[ev.CompanyNorm] = make(map[string]bool)
			order = append(order, ev.CompanyNorm)
		}
		agg.Events++
		if ev.EmployeesAffected != nil {
			agg.Employees += *ev.EmployeesAffected
		}
		if ev.EventDate.After(agg.Latest) {
			agg.Latest = ev.EventDate
		}
		for _, tag := range ev.FunctionTags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				tags[ev.CompanyNorm][tag] = true
			}
		}
	}

	out := make([]LayoffAggregate, 0, len(order))
	for _, key := range order {
		agg := byCompany[key]
		agg.Functions = make([]string, 0, len(tags[key]))
		for tag := range tags[key] {
			agg.Functions = append(agg.Functions, tag)
		}
		sort.Strings(agg.Functions)
		out = append(out, *agg)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Employees != out[b].Employees {
			return out[a].Employees > out[b].Employees
		}
		return out[a].CompanyName < out[b].CompanyName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

var (
	nonAlnum        = regexp.MustCompile(`[^a-z0-9 ]+`)
	corporateSuffix = regexp.MustCompile(`\s+(inc|incorporated|llc|ltd|limited|corp|corporation|co|company|plc|gmbh)$`)
)

// NormalizeCompany produces the grouping key for layoff events: lower case,
// punctuation removed, trailing corporate suffixes dropped.
func NormalizeCompany(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnum.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	for {
		trimmed := corporateSuffix.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return s
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

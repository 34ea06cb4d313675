package brief

import (
	"fmt"
	"strings"

	"github.com/amishk599/marketbrief/internal/model"
)

// Render returns the markdown brief. Sections always appear in the same
// order; optional data that is missing is replaced with a placeholder line.
func Render(b *Brief) string {
	var sb strings.Builder
	w := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	targets := sortedFunctions(b.Options.TargetFunctions)
	present := b.FunctionsPresent()
	names := make([]string, len(present))
	for i, f := range present {
		names[i] = string(f)
	}

	w("## Recruiter Market Brief – Snapshot")
	w("")
	w("_Generated %s_", b.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	w("")

	w("### TL;DR")
	w("- **Scope**: %d senior roles across %d functions (%s)", len(b.Jobs), len(present), strings.Join(names, ", "))
	w("- **Staleness**: ~**%.0f%%** of senior roles are older than %d days", b.StalePct(), b.Options.StaleDays)
	w("")

	w("### Volume by Function × Level")
	w("")
	w("| Function | Level | Roles |")
	w("|----------|-------|-------|")
	for _, f := range targets {
		for _, l := range model.ReportLevels {
			n := b.Volume[VolumeKey{Function: f, Level: l}]
			if n == 0 {
				continue
			}
			w("| %s | %s | %d |", f, l, n)
		}
	}
	w("")

	w("### Staleness by Function")
	w("")
	w("Roles are considered **stale** if first seen ≥ %d days ago.", b.Options.StaleDays)
	w("")
	w("| Function | Fresh | Stale | Stale %% |")
	w("|----------|-------|-------|---------|")
	for _, f := range targets {
		s := b.Staleness[f]
		w("| %s | %d | %d | %.0f%% |", f, s.Fresh, s.Stale, s.StalePct())
	}
	w("")

	w("### Where Hiring Is Hottest")
	w("")
	for _, f := range targets {
		companies := b.TopCompanies[f]
		if len(companies) == 0 {
			continue
		}
		w("#### %s", titleCase(string(f)))
		for _, c := range companies {
			w("- **%s** – %d senior %s roles", escapeCell(c.Name), c.Count, f)
		}
		w("")
	}

	w("### Market Reset / New Talent Supply")
	w("")
	if len(b.LayoffSummary) == 0 {
		w("_No recent layoff events ingested yet. Run `marketbrief layoffs import <file.csv>` to populate this section._")
	} else {
		w("Recent layoff events that may have released senior talent in relevant functions (coarse, aggregated view):")
		w("")
		w("| Company | Approx. affected | Events | Functions (coarse) | Latest event |")
		w("|---------|------------------|--------|---------------------|--------------|")
		for _, a := range b.LayoffSummary {
			affected := "-"
			if a.Employees > 0 {
				affected = fmt.Sprintf("%d", a.Employees)
			}
			funcs := strings.Join(a.Functions, ", ")
			if funcs == "" {
				funcs = "-"
			}
			w("| %s | %s | %d | %s | %s |", escapeCell(a.CompanyName), affected, a.Events, escapeCell(funcs), a.Latest.UTC().Format("2006-01-02"))
		}
	}
	w("")

	w("### Why Searches Stall")
	w("")
	w("Below are high-scope senior roles based on title language (strategy, execution, cross-functional work, leadership). These often correlate with slower, more fragile searches.")
	w("")
	if len(b.HighScope) == 0 {
		w("_No complex senior roles detected yet – dataset is still small._")
	} else {
		w("| Title | Function | Level | Scope index |")
		w("|-------|----------|-------|-------------|")
		for _, j := range b.HighScope {
			w("| %s | %s | %s | %d |", escapeCell(j.Title), orDash(string(j.Function)), orDash(string(j.Level)), j.Score)
		}
	}

	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	if strings.ToLower(s) == "gtm" {
		return "GTM"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeCell keeps s on one table row and inside one cell.
func escapeCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.ReplaceAll(s, "|", `\|`)
}

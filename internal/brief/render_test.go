package brief

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/amishk599/marketbrief/internal/model"
)

func roundTripJobs() []model.Job {
	return []model.Job{
		job("acme", "VP, Revenue Strategy", model.FunctionGTM, model.LevelVP, 10),
		job("acme", "Director of Sales", model.FunctionGTM, model.LevelDirector, 50),
		job("globex", "Chief Revenue Officer", model.FunctionGTM, model.LevelCLevel, 60),
		job("initech", "Director, Partnerships", model.FunctionGTM, model.LevelDirector, 5),
		job("globex", "VP Product", model.FunctionProduct, model.LevelVP, 45),
		job("acme", "Director of Product", model.FunctionProduct, model.LevelDirector, 1),
		job("initech", "Head of Product", model.FunctionProduct, model.LevelDirector, 2),
		job("globex", "Chief Financial Officer", model.FunctionFinance, model.LevelCLevel, 100),
		job("acme", "VP Finance", model.FunctionFinance, model.LevelVP, 200),
		job("initech", "Finance Director", model.FunctionFinance, model.LevelDirector, 3),
		// Outside the target set.
		job("acme", "Staff Engineer", model.FunctionEngineering, model.LevelUnknown, 3),
		job("acme", "Office Manager", model.FunctionUnknown, model.LevelManager, 3),
	}
}

var roundTripNames = map[string]string{"acme": "Acme", "globex": "Globex", "initech": "Initech"}

func section(md, heading string) string {
	start := strings.Index(md, heading)
	if start < 0 {
		return ""
	}
	rest := md[start+len(heading):]
	if end := strings.Index(rest, "\n### "); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

func tableRows(s string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(line, "| ") || strings.HasPrefix(line, "|--") {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if cells[0] == "Function" || cells[0] == "Title" || cells[0] == "Company" {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestRender_RoundTrip(t *testing.T) {
	b := Build(roundTripJobs(), roundTripNames, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	md := Render(b)

	if len(b.Jobs) != 10 {
		t.Fatalf("filtered jobs = %d, want 10", len(b.Jobs))
	}

	sum := 0
	for _, row := range tableRows(section(md, "### Volume by Function × Level")) {
		n, err := strconv.Atoi(row[2])
		if err != nil {
			t.Fatalf("bad volume row %v: %v", row, err)
		}
		if n == 0 {
			t.Errorf("zero-count row rendered: %v", row)
		}
		sum += n
	}
	if sum != len(b.Jobs) {
		t.Errorf("volume rows sum to %d, want %d", sum, len(b.Jobs))
	}

	totalFresh, totalStale := 0, 0
	for _, row := range tableRows(section(md, "### Staleness by Function")) {
		fresh, _ := strconv.Atoi(row[1])
		stale, _ := strconv.Atoi(row[2])
		totalFresh += fresh
		totalStale += stale
		want := (Staleness{Fresh: fresh, Stale: stale}).StalePct()
		if got := row[3]; got != strconv.FormatFloat(want, 'f', 0, 64)+"%" {
			t.Errorf("%s stale %% = %s, want %.0f%%", row[0], got, want)
		}
	}
	if totalFresh+totalStale != len(b.Jobs) {
		t.Errorf("staleness rows cover %d jobs, want %d", totalFresh+totalStale, len(b.Jobs))
	}
	overall := float64(totalStale) / float64(totalFresh+totalStale) * 100
	if !strings.Contains(md, "~**"+strconv.FormatFloat(overall, 'f', 0, 64)+"%**") {
		t.Errorf("TL;DR stale %% does not match weighted staleness %.0f%%", overall)
	}

	for _, want := range []string{
		"| gtm | 2 | 2 | 50% |",
		"| product | 2 | 1 | 33% |",
		"| finance | 1 | 2 | 67% |",
		"| operations | 0 | 0 | 0% |",
		"- **Scope**: 10 senior roles across 3 functions (finance, gtm, product)",
		"#### GTM",
		"- **Acme** – 2 senior gtm roles",
		"_No recent layoff events ingested yet.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("brief missing %q", want)
		}
	}
	if strings.Contains(md, "#### Operations") {
		t.Error("functions without postings should not get a top-companies subsection")
	}
}

func TestRender_SectionOrder(t *testing.T) {
	b := Build(roundTripJobs(), roundTripNames, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	md := Render(b)

	headings := []string{
		"### TL;DR",
		"### Volume by Function × Level",
		"### Staleness by Function",
		"### Where Hiring Is Hottest",
		"### Market Reset / New Talent Supply",
		"### Why Searches Stall",
	}
	last := -1
	for _, h := range headings {
		i := strings.Index(md, h)
		if i < 0 {
			t.Fatalf("missing section %q", h)
		}
		if i < last {
			t.Errorf("section %q out of order", h)
		}
		last = i
	}
}

func TestRender_Empty(t *testing.T) {
	b := Build(nil, nil, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	md := Render(b)

	for _, want := range []string{
		"- **Scope**: 0 senior roles across 0 functions ()",
		"~**0%**",
		"_No recent layoff events ingested yet.",
		"_No complex senior roles detected yet",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("empty brief missing %q", want)
		}
	}
}

func TestRender_Layoffs(t *testing.T) {
	n := func(v int) *int { return &v }
	layoffs := []model.LayoffEvent{
		{CompanyNorm: "acme", CompanyName: "Acme Inc.", EventDate: testNow.AddDate(0, 0, -10), EmployeesAffected: n(100), FunctionTags: []string{"gtm"}},
		{CompanyNorm: "acme", CompanyName: "Acme Inc.", EventDate: testNow.AddDate(0, 0, -3), EmployeesAffected: n(50), FunctionTags: []string{"finance", "gtm"}},
		{CompanyNorm: "globex", CompanyName: "Globex", EventDate: testNow.AddDate(0, 0, -20)},
		{CompanyNorm: "old", CompanyName: "Old Corp", EventDate: testNow.AddDate(0, 0, -90), EmployeesAffected: n(9000)},
	}
	b := Build(roundTripJobs(), roundTripNames, layoffs, DefaultOptions(), DefaultScopeTerms(), testNow)
	md := Render(b)

	latest := testNow.AddDate(0, 0, -3).Format("2006-01-02")
	for _, want := range []string{
		"| Acme Inc. | 150 | 2 | finance, gtm | " + latest + " |",
		"| Globex | - | 1 | - |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("layoff section missing %q", want)
		}
	}
	if strings.Contains(md, "Old Corp") {
		t.Error("layoff outside the window should be dropped")
	}
	if strings.Contains(md, "No recent layoff events") {
		t.Error("placeholder rendered despite layoff data")
	}
}

func TestRender_EscapesCompanyNames(t *testing.T) {
	jobs := []model.Job{job("pipe", "VP Finance", model.FunctionFinance, model.LevelVP, 2)}
	names := map[string]string{"pipe": "Pipe | Co"}
	layoffs := []model.LayoffEvent{
		{CompanyNorm: "pipe", CompanyName: "Pipe | Co\nLabs", EventDate: testNow.AddDate(0, 0, -1)},
	}
	md := Render(Build(jobs, names, layoffs, DefaultOptions(), DefaultScopeTerms(), testNow))

	if !strings.Contains(md, `- **Pipe \| Co** – 1 senior finance roles`) {
		t.Error("top company name not escaped")
	}
	rows := tableRows(section(md, "### Market Reset / New Talent Supply"))
	if len(rows) != 1 {
		t.Fatalf("layoff rows = %d, want 1", len(rows))
	}
	if !strings.Contains(md, `| Pipe \| Co Labs | - | 1 | - |`) {
		t.Errorf("layoff company cell not escaped: %v", rows[0])
	}
}

func TestRender_HighScope(t *testing.T) {
	b := Build(roundTripJobs(), roundTripNames, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	md := Render(b)

	rows := tableRows(section(md, "### Why Searches Stall"))
	if len(rows) == 0 {
		t.Fatal("expected high scope rows")
	}
	// "partner", "partnership" and "director".
	if rows[0][0] != "Director, Partnerships" || rows[0][3] != "3" {
		t.Errorf("top high scope row = %v", rows[0])
	}
	if rows[1][0] != "VP, Revenue Strategy" || rows[1][3] != "2" {
		t.Errorf("second high scope row = %v", rows[1])
	}
}

func TestBuildFacts(t *testing.T) {
	b := Build(roundTripJobs(), roundTripNames, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	f := BuildFacts(b)

	if f.TotalRoles != 10 || f.TotalStale != 5 || f.StalePct != 50 {
		t.Errorf("totals = (%d, %d, %v)", f.TotalRoles, f.TotalStale, f.StalePct)
	}
	if got := f.VolumeByFunctionLevel["gtm|director"]; got != 2 {
		t.Errorf("gtm|director = %d, want 2", got)
	}
	if got := f.StalenessByFunction["operations"]; got != (StalenessFact{}) {
		t.Errorf("operations staleness = %+v, want zero entry", got)
	}
	if got := f.TopCompanies["product"]; len(got) != 3 || got[0].Name != "Acme" {
		t.Errorf("product top companies = %v", got)
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"generated_at", "total_roles", "stale_pct", "volume_by_function_level", "staleness_by_function", "top_companies", "layoff_events_count", "high_scope_roles"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("facts missing key %q", key)
		}
	}
}

func TestBrief_Summary(t *testing.T) {
	b := Build(roundTripJobs(), roundTripNames, nil, DefaultOptions(), DefaultScopeTerms(), testNow)
	s := b.Summary("/tmp/brief.md")
	if s.TotalRoles != 10 || s.RunDate != "2026-06-15" || len(s.Functions) != 3 {
		t.Errorf("summary = %+v", s)
	}
	if s.ReportPath != "/tmp/brief.md" {
		t.Errorf("ReportPath = %q", s.ReportPath)
	}
	// One "Name (function)" entry per function present.
	got := strings.Join(s.TopCompanies, "; ")
	if len(s.TopCompanies) != 3 {
		t.Errorf("TopCompanies = %q, want 3 entries", got)
	}
	for _, want := range []string{"Acme (gtm)", "Acme (product)", "Acme (finance)"} {
		if !strings.Contains(got, want) {
			t.Errorf("TopCompanies = %q, missing %q", got, want)
		}
	}
}

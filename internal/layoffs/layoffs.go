// Package layoffs parses layoff event CSV exports.
//
// Expected columns (header names are case-insensitive, extra columns are
// ignored): company, date, employees_affected, geography, functions.
// functions holds tags separated by ";" or "|".
package layoffs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/brief"
	"github.com/amishk599/marketbrief/internal/model"
)

var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", "2006/01/02", time.RFC3339}

// RowError reports a CSV row that could not be parsed.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Parse reads layoff events from r. Rows that fail to parse are skipped and
// reported as *RowError values; the returned error is only set when the file
// itself is unusable.
func Parse(r io.Reader) ([]model.LayoffEvent, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty layoffs csv")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"company", "date"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("layoffs csv is missing the %q column", required)
		}
	}

	var events []model.LayoffEvent
	var rowErrs []error
	line := 1
	for {
		rec, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		ev, err := parseRow(rec, cols)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Line: line, Err: err})
			continue
		}
		events = append(events, ev)
	}
	return events, rowErrs, nil
}

func parseRow(rec []string, cols map[string]int) (model.LayoffEvent, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	name := get("company")
	norm := brief.NormalizeCompany(name)
	if norm == "" {
		return model.LayoffEvent{}, errors.New("company is empty")
	}
	date, err := parseDate(get("date"))
	if err != nil {
		return model.LayoffEvent{}, err
	}

	ev := model.LayoffEvent{
		CompanyNorm:  norm,
		CompanyName:  name,
		EventDate:    date,
		FunctionTags: splitTags(get("functions")),
	}
	if raw := strings.ReplaceAll(get("employees_affected"), ",", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return model.LayoffEvent{}, fmt.Errorf("invalid employees_affected %q", raw)
		}
		ev.EmployeesAffected = &n
	}
	if geo := get("geography"); geo != "" {
		ev.Geography = &geo
	}
	return ev, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' })
	var tags []string
	for _, f := range fields {
		if t := strings.ToLower(strings.TrimSpace(f)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

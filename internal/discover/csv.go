package discover

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadDomains reads the first column whose header contains "domain"
// (case-insensitive) from a CSV with a header row. Blank cells are skipped.
func ReadDomains(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.Contains(strings.ToLower(h), "domain") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no domain column in csv header %v", header)
	}

	var domains []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if d := strings.TrimSpace(rec[col]); d != "" {
			domains = append(domains, d)
		}
	}
	return domains, nil
}

// WriteResults writes results as CSV with a header row.
func WriteResults(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"domain", "status", "careers_url", "pattern_matched", "ats"}); err != nil {
		return err
	}
	for _, r := range results {
		ats := ""
		if r.Status == StatusFound {
			ats = string(r.Platform)
		}
		if err := cw.Write([]string{r.Domain, string(r.Status), r.CareersURL, r.PatternMatched, ats}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Tally counts results per status.
func Tally(results []Result) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

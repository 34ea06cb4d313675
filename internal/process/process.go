// Package process turns normalized postings into classified, storage-ready
// records.
package process

import (
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/classify"
	"github.com/amishk599/marketbrief/internal/model"
)

// Processor enriches postings with classification and parsed location.
type Processor struct {
	classifier *classify.Classifier
	now        func() time.Time
}

// New returns a Processor. A nil now uses time.Now.
func New(c *classify.Classifier, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{classifier: c, now: now}
}

// Process never fails: missing values fall back to zero values, and missing
// timestamps to the processor clock.
func (p *Processor) Process(raw model.NormalizedPosting) model.ProcessedPosting {
	out := model.ProcessedPosting{NormalizedPosting: raw}

	if raw.FirstSeen.IsZero() || raw.ScrapedAt.IsZero() {
		now := p.now().UTC()
		if out.FirstSeen.IsZero() {
			out.FirstSeen = now
		}
		if out.ScrapedAt.IsZero() {
			out.ScrapedAt = now
		}
	}

	out.Function, _ = p.classifier.Function(raw.Title)
	out.Level, _ = p.classifier.Level(raw.Title)
	out.LocationCity, out.LocationState = ParseLocation(raw.LocationRaw)
	return out
}

// ProcessAll processes a batch in order.
func (p *Processor) ProcessAll(raw []model.NormalizedPosting) []model.ProcessedPosting {
	out := make([]model.ProcessedPosting, 0, len(raw))
	for _, r := range raw {
		out = append(out, p.Process(r))
	}
	return out
}

// ParseLocation splits a raw location on commas. The first part is the city
// and the last part, cut to its first two characters, is the state. The cut
// assumes a US state abbreviation and is not validated, so "London, United
// Kingdom" yields state "Un".
func ParseLocation(raw string) (city, state *string) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	c := strings.TrimSpace(parts[0])
	city = &c
	if len(parts) < 2 {
		return city, nil
	}
	s := strings.TrimSpace(parts[len(parts)-1])
	if r := []rune(s); len(r) > 2 {
		s = string(r[:2])
	}
	return city, &s
}

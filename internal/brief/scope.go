package brief

import (
	"sort"
	"strings"
	"unicode"

	"github.com/amishk599/marketbrief/internal/model"
)

// ScopeTerms are the keyword sets behind the title scope score.
type ScopeTerms struct {
	Strategy        []string
	Execution       []string
	CrossFunctional []string
	Leadership      []string
	PeopleMgmt      []string
}

// DefaultScopeTerms returns the built-in scope keyword sets.
func DefaultScopeTerms() ScopeTerms {
	return ScopeTerms{
		Strategy:        []string{"strategy", "strategic", "roadmap", "portfolio", "transformation", "vision"},
		Execution:       []string{"execute", "execution", "deliver", "delivery", "own", "owning", "pipeline", "quota", "okrs"},
		CrossFunctional: []string{"cross functional", "partner", "partnership", "collaborate", "collaboration"},
		Leadership:      []string{"lead", "leader", "leadership", "head of", "director", "vp", "svp", "chief"},
		PeopleMgmt:      []string{"manage team", "managing team", "people manager", "people leadership", "build a team", "grow a team"},
	}
}

// CleanTitle lower-cases title and replaces every character that is neither
// a letter, digit nor whitespace with a space.
func CleanTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, title)
}

// ScoreTitle counts, per keyword set, how many distinct terms occur in the
// cleaned title.
func ScoreTitle(title string, terms ScopeTerms) (strategy, execution, crossFunctional, leadership int, peopleMgmt bool) {
	t := CleanTitle(title)
	if strings.TrimSpace(t) == "" {
		return 0, 0, 0, 0, false
	}
	return countHits(t, terms.Strategy),
		countHits(t, terms.Execution),
		countHits(t, terms.CrossFunctional),
		countHits(t, terms.Leadership),
		countHits(t, terms.PeopleMgmt) > 0
}

// countHits cleans each term the way titles are cleaned, so a configured
// "cross-functional" matches like "cross functional".
func countHits(t string, terms []string) int {
	seen := make(map[string]bool, len(terms))
	n := 0
	for _, term := range terms {
		term = CleanTitle(term)
		if strings.TrimSpace(term) == "" || seen[term] {
			continue
		}
		seen[term] = true
		if strings.Contains(t, term) {
			n++
		}
	}
	return n
}

// Score fills the score fields of every job in place.
func Score(jobs []model.Job, terms ScopeTerms) {
	for i := range jobs {
		j := &jobs[i]
		j.StrategyScore, j.ExecutionScore, j.CrossFunctionalScore, j.LeadershipScore, j.PeopleMgmt = ScoreTitle(j.Title, terms)
	}
}

// ScoredJob pairs a job with its total scope score.
type ScoredJob struct {
	model.Job
	Score int
}

// RankHighScope returns jobs with a positive scope score, highest first and
// then by title. limit <= 0 means no limit.
func RankHighScope(jobs []model.Job, limit int) []ScoredJob {
	out := make([]ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		if s := j.ScopeScore(); s > 0 {
			out = append(out, ScoredJob{Job: j, Score: s})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Title < out[b].Title
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

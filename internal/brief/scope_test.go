package brief

import (
	"testing"

	"github.com/amishk599/marketbrief/internal/model"
)

func TestCleanTitle(t *testing.T) {
	if got, want := CleanTitle("VP, Strategy & Ops/GTM"), "vp  strategy   ops gtm"; got != want {
		t.Errorf("CleanTitle = %q, want %q", got, want)
	}
}

func TestScoreTitle(t *testing.T) {
	terms := DefaultScopeTerms()
	tests := []struct {
		title                 string
		strat, exec, xf, lead int
		people                bool
	}{
		{"VP, Strategy & Transformation", 2, 0, 0, 1, false},
		{"Director, Revenue Operations Partner", 0, 0, 1, 1, false},
		{"People Manager - Pipeline Delivery", 0, 3, 0, 0, true},
		{"Accountant", 0, 0, 0, 0, false},
		{"Cross-Functional Program Lead", 0, 0, 1, 1, false},
		{"", 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			s, e, x, l, p := ScoreTitle(tt.title, terms)
			if s != tt.strat || e != tt.exec || x != tt.xf || l != tt.lead || p != tt.people {
				t.Errorf("ScoreTitle = (%d %d %d %d %v), want (%d %d %d %d %v)",
					s, e, x, l, p, tt.strat, tt.exec, tt.xf, tt.lead, tt.people)
			}
		})
	}
}

func TestScoreTitle_HyphenatedTerms(t *testing.T) {
	terms := ScopeTerms{CrossFunctional: []string{"cross-functional", "cross functional"}, Strategy: []string{"go-to-market"}}
	s, _, x, _, _ := ScoreTitle("Go-To-Market Strategy, Cross-Functional", terms)
	if s != 1 {
		t.Errorf("strategy = %d, want 1", s)
	}
	// Both spellings clean to the same term and count once.
	if x != 1 {
		t.Errorf("cross-functional = %d, want 1", x)
	}
}

func TestScoreTitle_CountsDistinctTerms(t *testing.T) {
	s, _, _, _, _ := ScoreTitle("Strategy strategy STRATEGY", DefaultScopeTerms())
	if s != 1 {
		t.Errorf("strategy score = %d, want 1", s)
	}
}

func TestRankHighScope(t *testing.T) {
	jobs := []model.Job{
		{Title: "B role", StrategyScore: 1},
		{Title: "A role", StrategyScore: 1},
		{Title: "Top role", StrategyScore: 2, PeopleMgmt: true},
		{Title: "Zero role"},
		{Title: "C role", LeadershipScore: 1},
	}

	got := RankHighScope(jobs, 3)

	want := []struct {
		title string
		score int
	}{{"Top role", 3}, {"A role", 1}, {"B role", 1}}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Title != w.title || got[i].Score != w.score {
			t.Errorf("[%d] = (%q, %d), want (%q, %d)", i, got[i].Title, got[i].Score, w.title, w.score)
		}
	}

	for _, sj := range RankHighScope(jobs, 0) {
		if sj.Title == "Zero role" {
			t.Error("zero-score job should be excluded")
		}
	}
}

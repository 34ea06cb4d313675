// Package classify assigns a function and seniority level to a job title
// using ordered keyword rules.
package classify

import (
	"strings"

	"github.com/amishk599/marketbrief/internal/model"
)

// Classifier matches lower-cased titles against keyword rules. The first
// matching rule wins.
//
// Keywords match as substrings. Short keywords (three characters or fewer,
// such as "vp" or "cto") must also end a word, so "director" does not match
// "cto" and "coordinator" does not match "coo", while "evp" still matches "vp".
type Classifier struct {
	functions []FunctionRule
	levels    []LevelRule
}

// New returns a Classifier for the given rules. Keywords are lower-cased once
// here so callers may configure them in any case.
func New(rules Rules) *Classifier {
	c := &Classifier{
		functions: make([]FunctionRule, len(rules.Functions)),
		levels:    make([]LevelRule, len(rules.Levels)),
	}
	for i, r := range rules.Functions {
		c.functions[i] = FunctionRule{Function: r.Function, Keywords: lowerAll(r.Keywords)}
	}
	for i, r := range rules.Levels {
		c.levels[i] = LevelRule{Level: r.Level, Keywords: lowerAll(r.Keywords)}
	}
	return c
}

// Default returns a Classifier using DefaultRules.
func Default() *Classifier {
	return New(DefaultRules())
}

// Function returns the first function whose keywords appear in title.
func (c *Classifier) Function(title string) (model.Function, bool) {
	t := strings.ToLower(title)
	if t == "" {
		return model.FunctionUnknown, false
	}
	for _, r := range c.functions {
		if containsAny(t, r.Keywords) {
			return r.Function, true
		}
	}
	return model.FunctionUnknown, false
}

// Level returns the first (most senior) level whose keywords appear in title.
func (c *Classifier) Level(title string) (model.Level, bool) {
	t := strings.ToLower(title)
	if t == "" {
		return model.LevelUnknown, false
	}
	for _, r := range c.levels {
		if containsAny(t, r.Keywords) {
			return r.Level, true
		}
	}
	return model.LevelUnknown, false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if matchKeyword(s, kw) {
			return true
		}
	}
	return false
}

func matchKeyword(s, kw string) bool {
	if strings.TrimSpace(kw) == "" {
		return false
	}
	if len(strings.TrimSpace(kw)) > 3 || !isWordByte(kw[len(kw)-1]) {
		return strings.Contains(s, kw)
	}
	for off := 0; ; {
		i := strings.Index(s[off:], kw)
		if i < 0 {
			return false
		}
		end := off + i + len(kw)
		if end == len(s) || !isWordByte(s[end]) {
			return true
		}
		off += i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

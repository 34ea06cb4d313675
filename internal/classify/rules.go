package classify

import "github.com/amishk599/marketbrief/internal/model"

// FunctionRule maps a set of title keywords to a function.
type FunctionRule struct {
	Function model.Function
	Keywords []string
}

// LevelRule maps a set of title keywords to a seniority level.
type LevelRule struct {
	Level    model.Level
	Keywords []string
}

// Rules is an ordered keyword configuration. Earlier rules take priority.
type Rules struct {
	Functions []FunctionRule
	Levels    []LevelRule
}

// DefaultRules returns the built-in keyword sets.
func DefaultRules() Rules {
	return Rules{
		Functions: []FunctionRule{
			{model.FunctionOperations, []string{"operations", "supply chain", "logistics", "program manager", "process", " ops"}},
			{model.FunctionFinance, []string{"finance", "financial", "accounting", "treasury", "fp&a", "controller", "audit", "cfo"}},
			{model.FunctionGTM, []string{"sales", "revenue", "gtm", "growth", "business development", "account exec", "partnerships", "customer success"}},
			{model.FunctionProduct, []string{"product", "pm", "product manager"}},
			{model.FunctionPeople, []string{"people", "hr", "human resources", "talent", "recruiting"}},
			{model.FunctionEngineering, []string{"engineer", "software", "technical", "infrastructure", "developer", "devops"}},
			{model.FunctionMarketing, []string{"marketing", "brand", "communications", "content"}},
		},
		Levels: []LevelRule{
			{model.LevelCLevel, []string{"chief", "ceo", "cfo", "coo", "cto", "cmo", "c-level", "c suite"}},
			{model.LevelSVP, []string{"senior vice president", "svp", "sr vp"}},
			{model.LevelVP, []string{"vice president", "vp", "v.p."}},
			{model.LevelDirector, []string{"director", "dir.", "head of"}},
		},
	}
}

// Merge returns r with any non-empty override keyword lists replacing the
// keywords of the matching category. Rule order is unchanged; categories
// absent from r are appended in the order given.
func (r Rules) Merge(functions map[model.Function][]string, levels map[model.Level][]string, functionOrder []model.Function, levelOrder []model.Level) Rules {
	out := Rules{
		Functions: make([]FunctionRule, 0, len(r.Functions)),
		Levels:    make([]LevelRule, 0, len(r.Levels)),
	}
	seenF := make(map[model.Function]bool)
	for _, fr := range r.Functions {
		if kws, ok := functions[fr.Function]; ok && len(kws) > 0 {
			fr.Keywords = kws
		}
		seenF[fr.Function] = true
		out.Functions = append(out.Functions, fr)
	}
	for _, f := range functionOrder {
		if !seenF[f] && len(functions[f]) > 0 {
			out.Functions = append(out.Functions, FunctionRule{Function: f, Keywords: functions[f]})
			seenF[f] = true
		}
	}

	seenL := make(map[model.Level]bool)
	for _, lr := range r.Levels {
		if kws, ok := levels[lr.Level]; ok && len(kws) > 0 {
			lr.Keywords = kws
		}
		seenL[lr.Level] = true
		out.Levels = append(out.Levels, lr)
	}
	for _, l := range levelOrder {
		if !seenL[l] && len(levels[l]) > 0 {
			out.Levels = append(out.Levels, LevelRule{Level: l, Keywords: levels[l]})
			seenL[l] = true
		}
	}
	return out
}

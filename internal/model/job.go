package model

import "time"

// Job is the aggregation-time view of a stored posting. The score fields are
// computed when a brief is built and are never persisted.
type Job struct {
	CompanyID string
	Title     string
	Function  Function
	Level     Level
	FirstSeen time.Time

	StrategyScore        int
	ExecutionScore       int
	CrossFunctionalScore int
	LeadershipScore      int
	PeopleMgmt           bool
}

// ScopeScore sums the title scores, counting the people-management flag as 1.
func (j Job) ScopeScore() int {
	s := j.StrategyScore + j.ExecutionScore + j.CrossFunctionalScore + j.LeadershipScore
	if j.PeopleMgmt {
		s++
	}
	return s
}

// LayoffEvent is an external layoff signal used for the talent-supply section.
type LayoffEvent struct {
	CompanyNorm       string
	CompanyName       string
	EventDate         time.Time
	EmployeesAffected *int
	Geography         *string
	FunctionTags      []string
}

package model

import "strings"

// Function is a broad job category. The zero value means the title did not
// match any function rule.
type Function string

const (
	FunctionUnknown     Function = ""
	FunctionOperations  Function = "operations"
	FunctionFinance     Function = "finance"
	FunctionGTM         Function = "gtm"
	FunctionProduct     Function = "product"
	FunctionPeople      Function = "people"
	FunctionEngineering Function = "engineering"
	FunctionMarketing   Function = "marketing"
)

// Known reports whether f is a concrete category.
func (f Function) Known() bool { return f != FunctionUnknown }

// Functions lists every concrete function.
var Functions = []Function{
	FunctionOperations, FunctionFinance, FunctionGTM, FunctionProduct,
	FunctionPeople, FunctionEngineering, FunctionMarketing,
}

// Valid reports whether f is one of Functions.
func (f Function) Valid() bool {
	for _, v := range Functions {
		if f == v {
			return true
		}
	}
	return false
}

// Level is a seniority tier. The zero value means unknown.
type Level string

const (
	LevelUnknown  Level = ""
	LevelCLevel   Level = "c-level"
	LevelSVP      Level = "svp"
	LevelVP       Level = "vp"
	LevelDirector Level = "director"
	// LevelManager is never produced by the classifier; it only appears as a
	// report row and a target level.
	LevelManager Level = "manager"
)

// Known reports whether l is a concrete tier.
func (l Level) Known() bool { return l != LevelUnknown }

// Valid reports whether l is one of ReportLevels.
func (l Level) Valid() bool {
	for _, v := range ReportLevels {
		if l == v {
			return true
		}
	}
	return false
}

// ReportLevels is the fixed row order of the volume table.
var ReportLevels = []Level{LevelCLevel, LevelSVP, LevelVP, LevelDirector, LevelManager}

// Platform identifies the ATS hosting a company's job board.
type Platform string

const (
	PlatformAshby      Platform = "ashby"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

// ParsePlatform maps a config/db string onto a Platform. Empty and
// unrecognised values are unknown.
func ParsePlatform(s string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformAshby, PlatformGreenhouse, PlatformLever, PlatformWorkday:
		return p
	}
	return PlatformUnknown
}

package model

import "context"

// PostingFetcher fetches the current postings of one company board.
type PostingFetcher interface {
	FetchPostings(ctx context.Context) ([]NormalizedPosting, error)
}

// FetchStatus distinguishes "no postings" from "fetch failed".
type FetchStatus string

const (
	FetchFound   FetchStatus = "found"
	FetchEmpty   FetchStatus = "empty"
	FetchFailed  FetchStatus = "failed"
	FetchSkipped FetchStatus = "skipped" // unsupported platform
)

// FetchResult is the outcome of scraping one company. Postings is always
// empty unless Status is FetchFound.
type FetchResult struct {
	CompanyID string
	Status    FetchStatus
	Postings  []NormalizedPosting
	Err       error
}

// NewFetchResult classifies a fetcher's return values.
func NewFetchResult(companyID string, postings []NormalizedPosting, err error) FetchResult {
	switch {
	case err != nil:
		return FetchResult{CompanyID: companyID, Status: FetchFailed, Err: err}
	case len(postings) == 0:
		return FetchResult{CompanyID: companyID, Status: FetchEmpty}
	default:
		return FetchResult{CompanyID: companyID, Status: FetchFound, Postings: postings}
	}
}

// Notifier announces a finished market brief.
type Notifier interface {
	Notify(ctx context.Context, summary BriefSummary) error
}

// BriefSummary is the short form of a brief sent to notifiers.
type BriefSummary struct {
	RunDate       string
	TotalRoles    int
	StalePct      float64
	StaleDays     int
	Functions     []string
	TopCompanies  []string // "Name (function)": the leading company of each function present
	LayoffCompany int
	ReportPath    string
}

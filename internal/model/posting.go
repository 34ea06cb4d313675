package model

import "time"

// NormalizedPosting is the common record every ATS adapter produces.
// (SourceJobID, CompanyID) is the identity key.
type NormalizedPosting struct {
	SourceJobID string
	CompanyID   string
	Title       string
	URL         string
	FirstSeen   time.Time
	LocationRaw string // empty when the board gives no location
	IsRemote    bool
	SourceURL   string // careers page the posting was scraped from
	ScrapedAt   time.Time
}

// ProcessedPosting is a NormalizedPosting enriched with classification and
// parsed location. It is the storage-ready record.
type ProcessedPosting struct {
	NormalizedPosting

	Function      Function
	Level         Level
	LocationCity  *string
	LocationState *string // first two characters of the last location part
}

// Key returns the natural identity key of the posting.
func (p NormalizedPosting) Key() PostingKey {
	return PostingKey{SourceJobID: p.SourceJobID, CompanyID: p.CompanyID}
}

// PostingKey is the upsert conflict key for job postings.
type PostingKey struct {
	SourceJobID string
	CompanyID   string
}

// Company is a tracked employer and its careers page.
type Company struct {
	ID         string
	Name       string
	ATS        Platform
	CareersURL string
	BoardToken string // optional; overrides the slug derived from CareersURL
}

// DisplayName returns Name, falling back to ID.
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Categories    leverCategories `json:"categories"`
	CreatedAt     int64           `json:"createdAt"`
	WorkplaceType string          `json:"workplaceType"`
	HostedURL     string          `json:"hostedUrl"`
}

// LeverAdapter fetches postings from the Lever public postings API.
type LeverAdapter struct {
	board
}

// NewLeverAdapter creates an adapter for the Lever board named companySlug.
func NewLeverAdapter(companyID, companySlug, careersURL string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{board: board{
		companyID: companyID,
		token:     companySlug,
		sourceURL: careersURL,
		client:    client,
		now:       time.Now,
	}}
}

// FetchPostings retrieves every job on the board.
func (a *LeverAdapter) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.token)

	var jobs []leverJob
	if err := a.doJSON(ctx, http.MethodGet, url, nil, &jobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.token, err)
	}

	scrapedAt := a.now().UTC()
	postings := make([]model.NormalizedPosting, 0, len(jobs))
	for _, lj := range jobs {
		if lj.ID == "" {
			continue
		}

		// Prefer allLocations when present.
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		jobURL := lj.HostedURL
		if jobURL == "" {
			jobURL = fmt.Sprintf("https://jobs.lever.co/%s/%s", a.token, lj.ID)
		}

		p := model.NormalizedPosting{
			SourceJobID: lj.ID,
			CompanyID:   a.companyID,
			Title:       lj.Text,
			URL:         jobURL,
			LocationRaw: location,
			IsRemote:    strings.EqualFold(lj.WorkplaceType, "remote") || isRemote(location),
			SourceURL:   a.sourceURL,
			ScrapedAt:   scrapedAt,
		}
		// createdAt is Unix milliseconds.
		if lj.CreatedAt > 0 {
			p.FirstSeen = time.UnixMilli(lj.CreatedAt).UTC()
		}
		postings = append(postings, p)
	}

	return postings, nil
}

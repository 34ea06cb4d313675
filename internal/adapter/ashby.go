package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	JobURL        string `json:"jobUrl"`
	PublishedAt   string `json:"publishedAt"`
	IsListed      bool   `json:"isListed"`
	IsRemote      bool   `json:"isRemote"`
	WorkplaceType string `json:"workplaceType"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter fetches postings from the Ashby public job board API.
type AshbyAdapter struct {
	board
}

// NewAshbyAdapter creates an adapter for the Ashby board named boardToken.
func NewAshbyAdapter(companyID, boardToken, careersURL string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{board: board{
		companyID: companyID,
		token:     boardToken,
		sourceURL: careersURL,
		client:    client,
		now:       time.Now,
	}}
}

// FetchPostings retrieves the listed jobs of the board. Unlisted jobs are
// skipped.
func (a *AshbyAdapter) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, a.token)

	var resp ashbyResponse
	if err := a.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", a.token, err)
	}

	scrapedAt := a.now().UTC()
	postings := make([]model.NormalizedPosting, 0, len(resp.Jobs))
	for _, aj := range resp.Jobs {
		if !aj.IsListed {
			continue
		}
		id := aj.ID
		if id == "" {
			id = aj.JobURL
		}
		if id == "" {
			continue
		}

		p := model.NormalizedPosting{
			SourceJobID: id,
			CompanyID:   a.companyID,
			Title:       aj.Title,
			URL:         aj.JobURL,
			LocationRaw: aj.Location,
			IsRemote:    aj.IsRemote || aj.WorkplaceType == "Remote" || isRemote(aj.Location),
			SourceURL:   a.sourceURL,
			ScrapedAt:   scrapedAt,
		}
		if aj.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
				p.FirstSeen = t.UTC()
			}
		}
		postings = append(postings, p)
	}

	return postings, nil
}

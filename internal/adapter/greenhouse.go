package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches postings from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	board
}

// NewGreenhouseAdapter creates an adapter for the Greenhouse board named
// boardToken.
func NewGreenhouseAdapter(companyID, boardToken, careersURL string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{board: board{
		companyID: companyID,
		token:     boardToken,
		sourceURL: careersURL,
		client:    client,
		now:       time.Now,
	}}
}

// FetchPostings retrieves every job on the board. Greenhouse only exposes
// updated_at, which is used as the first-seen time.
func (a *GreenhouseAdapter) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, a.token)

	var resp greenhouseResponse
	if err := a.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", a.token, err)
	}

	scrapedAt := a.now().UTC()
	postings := make([]model.NormalizedPosting, 0, len(resp.Jobs))
	for _, gj := range resp.Jobs {
		id := strconv.FormatInt(gj.ID, 10)
		jobURL := gj.AbsoluteURL
		if jobURL == "" {
			jobURL = fmt.Sprintf("%s/jobs/%s", a.sourceURL, id)
		}

		p := model.NormalizedPosting{
			SourceJobID: id,
			CompanyID:   a.companyID,
			Title:       gj.Title,
			URL:         jobURL,
			LocationRaw: gj.Location.Name,
			IsRemote:    isRemote(gj.Location.Name),
			SourceURL:   a.sourceURL,
			ScrapedAt:   scrapedAt,
		}
		if gj.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
				p.FirstSeen = t.UTC()
			}
		}
		postings = append(postings, p)
	}

	return postings, nil
}

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

const (
	workdayPageSize = 20
	workdayMaxPages = 100
)

// workdayListingResponse is the response from the Workday jobs listing endpoint.
type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"`
}

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// WorkdayAdapter fetches postings from a Workday career site. Only the
// listing endpoint is used; per-job detail pages are not fetched.
type WorkdayAdapter struct {
	board
}

// NewWorkdayAdapter creates an adapter for the Workday cxs endpoint baseURL,
// e.g. https://acme.wd1.myworkdayjobs.com/wday/cxs/acme/External.
func NewWorkdayAdapter(companyID, baseURL, careersURL string, client *http.Client) *WorkdayAdapter {
	return &WorkdayAdapter{board: board{
		companyID: companyID,
		token:     strings.TrimRight(baseURL, "/"),
		sourceURL: careersURL,
		client:    client,
		now:       time.Now,
	}}
}

var workdayLocale = regexp.MustCompile(`^[a-z]{2}-[A-Z]{2}$`)

// WorkdayBaseURL derives the cxs API base from a public career site URL such
// as https://acme.wd1.myworkdayjobs.com/en-US/External.
func WorkdayBaseURL(careersURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(careersURL))
	if err != nil {
		return "", fmt.Errorf("parse careers url %q: %w", careersURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in workday url %q", careersURL)
	}
	if strings.HasPrefix(u.Path, "/wday/cxs/") {
		return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
	}

	tenant := strings.SplitN(u.Host, ".", 2)[0]
	var site string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" || workdayLocale.MatchString(seg) {
			continue
		}
		site = seg
		break
	}
	if site == "" {
		return "", fmt.Errorf("no workday site name in %q", careersURL)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/wday/cxs/%s/%s", scheme, u.Host, tenant, site), nil
}

// FetchPostings pages through the listing endpoint until every listing has
// been seen.
func (a *WorkdayAdapter) FetchPostings(ctx context.Context) ([]model.NormalizedPosting, error) {
	listings, err := a.fetchAllListings(ctx)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	postings := make([]model.NormalizedPosting, 0, len(listings))
	for _, l := range listings {
		if l.ExternalPath == "" {
			continue
		}
		postings = append(postings, model.NormalizedPosting{
			SourceJobID: l.ExternalPath,
			CompanyID:   a.companyID,
			Title:       l.Title,
			URL:         a.jobURL(l.ExternalPath),
			FirstSeen:   parsePostedOn(l.PostedOn, now),
			LocationRaw: l.LocationsText,
			IsRemote:    isRemote(l.LocationsText),
			SourceURL:   a.sourceURL,
			ScrapedAt:   now,
		})
	}
	return postings, nil
}

func (a *WorkdayAdapter) fetchAllListings(ctx context.Context) ([]workdayListing, error) {
	var all []workdayListing
	offset := 0

	for page := 0; page < workdayMaxPages; page++ {
		body, err := json.Marshal(workdayListingRequest{
			AppliedFacets: map[string]any{},
			Limit:         workdayPageSize,
			Offset:        offset,
		})
		if err != nil {
			return nil, fmt.Errorf("workday listing marshal for %s: %w", a.companyID, err)
		}

		var resp workdayListingResponse
		if err := a.doJSON(ctx, http.MethodPost, a.token+"/jobs", bytes.NewReader(body), &resp); err != nil {
			return nil, fmt.Errorf("workday listing fetch for %s: %w", a.companyID, err)
		}

		all = append(all, resp.JobPostings...)

		offset += workdayPageSize
		if len(resp.JobPostings) == 0 || offset >= resp.Total {
			break
		}
	}

	return all, nil
}

// jobURL joins the public site with a listing path. The site is the careers
// URL when known, otherwise the host of the API base.
func (a *WorkdayAdapter) jobURL(externalPath string) string {
	site := strings.TrimRight(a.sourceURL, "/")
	if site == "" {
		if u, err := url.Parse(a.token); err == nil {
			site = u.Scheme + "://" + u.Host
		}
	}
	return site + externalPath
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+)\+? Days? Ago$`)

// parsePostedOn converts a Workday relative date ("Posted Today",
// "Posted 3 Days Ago", "Posted 30+ Days Ago") to a UTC midnight. "30+" is
// treated as exactly 30 days. Unrecognised values return the zero time.
func parsePostedOn(postedOn string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return today
	case "Posted Yesterday":
		return today.AddDate(0, 0, -1)
	}

	if m := daysAgoRegex.FindStringSubmatch(postedOn); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return today.AddDate(0, 0, -n)
		}
	}
	return time.Time{}
}

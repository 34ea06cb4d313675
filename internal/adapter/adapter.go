// Package adapter fetches job postings from public ATS job board APIs and
// normalizes them into model.NormalizedPosting records.
package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/marketbrief/internal/model"
)

// ErrUnsupportedPlatform is returned by New for companies whose ATS has no
// adapter.
var ErrUnsupportedPlatform = errors.New("unsupported ATS platform")

// platformRules are checked in order and the first match wins.
var platformRules = []struct {
	platform model.Platform
	needles  []string
}{
	{model.PlatformAshby, []string{"ashbyhq.com", "ashby"}},
	{model.PlatformGreenhouse, []string{"greenhouse.io"}},
	{model.PlatformLever, []string{"lever.co"}},
	{model.PlatformWorkday, []string{"workday", "myworkdayjobs.com"}},
}

// DetectPlatform maps a careers URL to the ATS hosting it.
func DetectPlatform(careersURL string) model.Platform {
	u := strings.ToLower(careersURL)
	for _, r := range platformRules {
		for _, n := range r.needles {
			if strings.Contains(u, n) {
				return r.platform
			}
		}
	}
	return model.PlatformUnknown
}

// Options are shared by every adapter built with New.
type Options struct {
	UserAgent string
	Now       func() time.Time
}

// New builds the fetcher for c. The company's BoardToken, when set, replaces
// the slug derived from its careers URL.
func New(c model.Company, client *http.Client, opts Options) (model.PostingFetcher, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	platform := c.ATS
	if platform == "" || platform == model.PlatformUnknown {
		platform = DetectPlatform(c.CareersURL)
	}

	token := c.BoardToken
	if token == "" && platform != model.PlatformWorkday {
		slug, err := BoardSlug(platform, c.CareersURL)
		if err != nil {
			return nil, fmt.Errorf("company %s: %w", c.ID, err)
		}
		token = slug
	}

	b := board{
		companyID: c.ID,
		token:     token,
		sourceURL: c.CareersURL,
		client:    client,
		userAgent: opts.UserAgent,
		now:       opts.Now,
	}

	switch platform {
	case model.PlatformAshby:
		return &AshbyAdapter{board: b}, nil
	case model.PlatformGreenhouse:
		return &GreenhouseAdapter{board: b}, nil
	case model.PlatformLever:
		return &LeverAdapter{board: b}, nil
	case model.PlatformWorkday:
		base := c.BoardToken
		if base == "" {
			var err error
			if base, err = WorkdayBaseURL(c.CareersURL); err != nil {
				return nil, fmt.Errorf("company %s: %w", c.ID, err)
			}
		}
		b.token = strings.TrimRight(base, "/")
		return &WorkdayAdapter{board: b}, nil
	}
	return nil, fmt.Errorf("company %s (%s): %w", c.ID, c.CareersURL, ErrUnsupportedPlatform)
}

// BoardSlug extracts the job board name from a careers URL, such as "acme"
// from https://jobs.lever.co/acme/123.
func BoardSlug(platform model.Platform, careersURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(careersURL))
	if err != nil {
		return "", fmt.Errorf("parse careers url %q: %w", careersURL, err)
	}
	host := strings.ToLower(u.Host)
	first := firstSegment(u.Path)

	var slug string
	switch platform {
	case model.PlatformAshby:
		if host == "jobs.ashbyhq.com" {
			slug = first
		}
	case model.PlatformGreenhouse:
		if strings.HasSuffix(host, "greenhouse.io") {
			slug = first
			if slug == "" || slug == "embed" {
				slug = u.Query().Get("for")
			}
		}
	case model.PlatformLever:
		switch {
		case host == "jobs.lever.co" || host == "jobs.eu.lever.co":
			slug = first
		case strings.HasSuffix(host, "lever.co"):
			slug = first
			if slug == "" {
				// Lever's own site lists Lever's own openings.
				slug = "lever"
			}
		}
	default:
		return "", ErrUnsupportedPlatform
	}

	if slug == "" {
		return "", fmt.Errorf("no %s board name in %q", platform, careersURL)
	}
	return slug, nil
}

func firstSegment(path string) string {
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			return s
		}
	}
	return ""
}

// board is the per-company state every adapter shares.
type board struct {
	companyID string
	token     string
	sourceURL string
	client    *http.Client
	userAgent string
	now       func() time.Time
}

func isRemote(values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), "remote") {
			return true
		}
	}
	return false
}

// Package discover finds the careers page and ATS of companies given only
// their web domain.
package discover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/marketbrief/internal/adapter"
	"github.com/amishk599/marketbrief/internal/model"
	"github.com/amishk599/marketbrief/internal/workpool"
)

// Status is the outcome of checking one domain.
type Status string

const (
	StatusFound    Status = "FOUND"
	StatusNotFound Status = "NOT_FOUND"
	StatusError    Status = "ERROR"
)

// Result describes what was found for a domain.
type Result struct {
	Domain         string
	Status         Status
	CareersURL     string // final URL after redirects, or the embedded ATS link
	PatternMatched string // candidate URL that answered 200
	Platform       model.Platform
	Err            error
}

// maxPageBytes bounds how much of a company-hosted careers page is parsed.
const maxPageBytes = 2 << 20

// CompanyName is the first label of the domain ("acme" for "acme.com").
func CompanyName(domain string) string {
	name, _, _ := strings.Cut(normalizeDomain(domain), ".")
	return name
}

// Candidates lists the URLs probed for domain, in order.
func Candidates(domain string) []string {
	d := normalizeDomain(domain)
	name := CompanyName(d)
	return []string{
		"https://" + d + "/careers",
		"https://jobs." + d,
		"https://careers." + d,
		"https://" + d + "/jobs",
		"https://boards.greenhouse.io/" + name,
		"https://jobs.lever.co/" + name,
		"https://jobs.ashbyhq.com/" + name,
		"https://" + name + ".wd1.myworkdayjobs.com",
	}
}

func normalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	d, _, _ = strings.Cut(d, "/")
	return d
}

// Scanner probes candidate careers URLs.
type Scanner struct {
	client    *http.Client
	pool      *workpool.Pool
	userAgent string
	logger    *slog.Logger
}

// NewScanner creates a scanner. pool bounds concurrent domain checks.
func NewScanner(client *http.Client, pool *workpool.Pool, userAgent string, logger *slog.Logger) *Scanner {
	return &Scanner{client: client, pool: pool, userAgent: userAgent, logger: logger}
}

// Scan checks every domain and returns results in input order.
func (s *Scanner) Scan(ctx context.Context, domains []string) []Result {
	results := workpool.Map(ctx, s.pool, domains, func(ctx context.Context, d string) Result {
		r := s.Check(ctx, d)
		if r.Status == StatusFound {
			s.logger.Info("careers page found", "domain", d, "url", r.CareersURL, "ats", r.Platform)
		} else {
			s.logger.Debug("careers page not found", "domain", d, "status", r.Status, "error", r.Err)
		}
		return r
	})
	for i := range results {
		if results[i].Status == "" {
			results[i] = Result{Domain: domains[i], Status: StatusError, Err: ctx.Err()}
		}
	}
	return results
}

// Check probes the candidates of one domain with HEAD requests; the first 200
// wins. A hit on a company-hosted page is scanned for an embedded ATS link.
// ERROR means no candidate produced any HTTP response.
func (s *Scanner) Check(ctx context.Context, domain string) Result {
	res := Result{Domain: domain, Status: StatusNotFound}
	if normalizeDomain(domain) == "" {
		res.Status = StatusError
		res.Err = fmt.Errorf("empty domain")
		return res
	}

	responded := false
	var lastErr error
	for _, candidate := range Candidates(domain) {
		if err := ctx.Err(); err != nil {
			res.Status, res.Err = StatusError, err
			return res
		}
		final, status, err := s.head(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		responded = true
		if status != http.StatusOK {
			continue
		}

		res.Status = StatusFound
		res.PatternMatched = candidate
		res.CareersURL = final
		res.Platform = adapter.DetectPlatform(final)
		if res.Platform == model.PlatformUnknown {
			if link, err := s.embeddedATSLink(ctx, final); err != nil {
				s.logger.Debug("careers page scan failed", "url", final, "error", err)
			} else if link != "" {
				res.CareersURL = link
				res.Platform = adapter.DetectPlatform(link)
			}
		}
		return res
	}

	if !responded && lastErr != nil {
		res.Status, res.Err = StatusError, lastErr
	}
	return res
}

func (s *Scanner) head(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), resp.StatusCode, nil
}

// embeddedATSLink fetches a careers page and returns the first link, frame or
// script pointing at a supported ATS, resolved against the page URL.
func (s *Scanner) embeddedATSLink(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("careers page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("parse careers page: %w", err)
	}
	return FindATSLink(doc, resp.Request.URL), nil
}

// FindATSLink returns the first a[href], iframe[src] or script[src] in doc
// whose absolute URL belongs to a supported ATS, or "" when there is none.
func FindATSLink(doc *goquery.Document, base *url.URL) string {
	var found string
	doc.Find("a[href], iframe[src], script[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		ref, ok := sel.Attr("href")
		if !ok {
			ref, _ = sel.Attr("src")
		}
		ref = strings.TrimSpace(ref)
		if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") {
			return true
		}
		u, err := url.Parse(ref)
		if err != nil {
			return true
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		abs := u.String()
		if adapter.DetectPlatform(abs) == model.PlatformUnknown {
			return true
		}
		found = abs
		return false
	})
	return found
}

// Companies converts found results with a supported ATS into registry
// records keyed by company name.
func Companies(results []Result) []model.Company {
	var out []model.Company
	for _, r := range results {
		if r.Status != StatusFound || r.Platform == model.PlatformUnknown {
			continue
		}
		name := CompanyName(r.Domain)
		out = append(out, model.Company{
			ID:         name,
			Name:       name,
			ATS:        r.Platform,
			CareersURL: r.CareersURL,
		})
	}
	return out
}

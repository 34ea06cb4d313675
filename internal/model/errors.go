package model

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// HTTPError is a non-200 response from a job board or webhook. The retry
// layer inspects StatusCode and RetryAfter through errors.As.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	RetryAfter time.Duration // zero when the response carried no usable Retry-After
	Err        error         // optional detail, e.g. a response body excerpt
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("HTTP %d", e.StatusCode)
	if e.Method != "" || e.URL != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Method, e.URL, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Transient reports whether the status is worth retrying (429 or 5xx).
func (e *HTTPError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ParseRetryAfter reads a Retry-After header given either as delay seconds
// or as an HTTP date. Absent, malformed and past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	if d := at.Sub(now); d > 0 {
		return d
	}
	return 0
}

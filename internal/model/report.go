package model

import "time"

// FetchEvent is a single fetch outcome recorded in the journal.
// Events are diagnostics: the crawler never reads them back to decide
// anything, so the journal stays out of the crawl's control flow.
type FetchEvent struct {
	// URL is the canonical domain+path URL that was fetched.
	URL string `json:"url"`

	// Domain is the domain-only URL the fetch belongs to.
	Domain string `json:"domain"`

	// OK reports whether the fetch succeeded.
	OK bool `json:"ok"`

	// ErrorKind names the failure category for failed fetches ("fetch
	// failed", ...). Empty on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// Duration is how long the fetch took.
	Duration time.Duration `json:"duration"`

	// Timestamp is when the fetch completed.
	Timestamp time.Time `json:"timestamp"`
}

// DomainReport summarizes recorded crawl activity for one domain.
type DomainReport struct {
	// Domain is the domain-only URL the report covers.
	Domain string `json:"domain"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// TotalFetches counts all recorded fetches for the domain.
	TotalFetches int `json:"total_fetches"`

	// OKFetches counts successful fetches.
	OKFetches int `json:"ok_fetches"`

	// FailedFetches counts failed fetches.
	FailedFetches int `json:"failed_fetches"`

	// Suppressed maps suppressed-diagnostic kinds to their counts.
	// These are expected control-flow outcomes (cross-domain links
	// dropped, dispatch skipped after stop) that are counted rather
	// than logged as errors.
	Suppressed map[string]int64 `json:"suppressed,omitempty"`

	// Fetches lists the most recent fetch events, newest first.
	Fetches []FetchEvent `json:"fetches,omitempty"`
}

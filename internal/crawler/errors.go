package crawler

import (
	"fmt"
)

// ErrorKind classifies crawl failures. Expected control-flow outcomes
// (a stopped domain, a cross-domain link) share the error type with real
// failures purely for propagation convenience; the kind's display policy
// keeps them out of the operator's logs.
type ErrorKind int

// The crawl error taxonomy.
const (
	// KindInvalidURL means a start or stop payload failed to parse as an
	// absolute URL.
	KindInvalidURL ErrorKind = iota + 1

	// KindParentNotFound means StartJob referenced a parent that is not
	// registered in the tree. This is an internal invariant violation.
	KindParentNotFound

	// KindDomainNotFound means the domain root a job should nest under is
	// missing from the tree. This is an internal invariant violation.
	KindDomainNotFound

	// KindDomainStopped means the owning domain is not currently crawling.
	// Expected and frequent after a stop command; suppressed.
	KindDomainStopped

	// KindRelativeLink means a relative href could not be resolved against
	// its page's URL. Indicates malformed page content.
	KindRelativeLink

	// KindCrossDomain means a resolved link points off-site. Expected and
	// frequent; suppressed, but counted for diagnostics.
	KindCrossDomain

	// KindLinkParse means an href failed to parse for a reason other than
	// being relative.
	KindLinkParse

	// KindChannelClosed means the command channel yielded no value.
	KindChannelClosed

	// KindFetchFailed means fetching a page failed. The worker's timestamp
	// is not updated, so the URL is immediately retryable.
	KindFetchFailed

	// KindTreeCorrupt means a tree key had no registered entry during List
	// rendering. This is an unrecoverable internal invariant violation.
	KindTreeCorrupt
)

// String returns the kind's name as used in logs and the journal.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid url"
	case KindParentNotFound:
		return "parent not found"
	case KindDomainNotFound:
		return "domain not found"
	case KindDomainStopped:
		return "domain stopped"
	case KindRelativeLink:
		return "relative link unresolvable"
	case KindCrossDomain:
		return "cross-domain link"
	case KindLinkParse:
		return "link parse error"
	case KindChannelClosed:
		return "command channel closed"
	case KindFetchFailed:
		return "fetch failed"
	case KindTreeCorrupt:
		return "tree corrupt"
	default:
		return "unknown"
	}
}

// Reportable reports whether errors of this kind belong in the
// operator's log. Suppressed kinds are expected control-flow outcomes;
// they short-circuit the call that produced them but are only counted.
func (k ErrorKind) Reportable() bool {
	switch k {
	case KindDomainStopped, KindCrossDomain:
		return false
	default:
		return true
	}
}

// Error is a classified crawl failure. URL is the subject of the
// failure; Related carries the second URL involved where one exists
// (the parent of a job, the page a link was found on).
type Error struct {
	Kind    ErrorKind
	URL     string
	Related string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.URL != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.URL)
	}
	if e.Related != "" {
		msg = fmt.Sprintf("%s (from %s)", msg, e.Related)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Package urlnorm derives the canonical URL forms the crawler uses as
// registry keys: the domain-only form that identifies a site and the
// domain+path form that identifies a single crawl job.
//
// Both derivations are idempotent: applying them to their own output
// yields the same value. This is what makes the forms usable as map keys
// for deduplication.
package urlnorm

import (
	"net/url"
	"strings"
)

// DomainOnly returns a copy of u reduced to scheme and host.
// Path, query, and fragment are cleared. The result identifies the site
// a URL belongs to and keys its crawl on/off state.
func DomainOnly(u *url.URL) *url.URL {
	c := *u
	c.Path = ""
	c.RawPath = ""
	c.RawQuery = ""
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}

// DomainPath returns a copy of u with query and fragment cleared and
// trailing slashes removed from the path. The result is the canonical
// identity of a crawl job: two URLs that reduce to the same domain+path
// form are the same job.
//
// All trailing slashes are stripped, not just one, so that the
// derivation stays idempotent even for paths like "/a//".
func DomainPath(u *url.URL) *url.URL {
	c := *u
	c.RawQuery = ""
	c.Fragment = ""
	c.RawFragment = ""
	c.Path = strings.TrimRight(c.Path, "/")
	c.RawPath = ""
	return &c
}

// SameSite reports whether two URLs belong to the same site, meaning
// their schemes and hosts match exactly. Links are only followed within
// the site they were discovered on.
func SameSite(a, b *url.URL) bool {
	return a.Scheme == b.Scheme && a.Host == b.Host
}

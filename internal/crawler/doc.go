// Package crawler implements the crawl orchestrator and the per-URL
// crawl workers.
//
// # Architecture
//
// The Crawler owns three independently locked registries keyed by
// canonical URL strings: domain crawl flags, workers, and the
// parent/children discovery tree. A Worker is the per-URL state machine
// that fetches a page (subject to a staleness window), fans the text out
// to partitioned anchor scanners, and asks the Crawler to start a job
// for every same-site link it finds. Discovery is recursive and
// unbounded: every valid link becomes its own goroutine, throttled only
// by the staleness window and the site's actual link graph.
//
// No lock is held across a fetch or across recursive dispatch, and no
// operation takes two registry locks at once across a blocking point, so
// the registries need no lock ordering. A List racing an in-flight Start
// may observe a partially populated tree; that is accepted behavior, not
// a bug.
//
// Stopping a domain flips a flag. It cancels nothing: workers already
// fetching run to completion, and the flag check at the top of StartJob
// quiesces their recursive discovery instead of erroring every
// descendant.
package crawler

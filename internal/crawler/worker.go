package crawler

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"crawld/internal/htmlscan"
	"crawld/internal/urlnorm"
)

// Worker is the per-URL crawl state machine. A worker is created once
// per canonical domain+path URL and never destroyed; after the staleness
// window elapses it may run again.
//
// The worker's mutex is the one correctness-critical mutual exclusion in
// the crawl: it serializes Start past the staleness check, guaranteeing
// at most one in-flight fetch per canonical URL. It does not prevent two
// fetches back-to-back once the window has elapsed between them.
type Worker struct {
	// crawler is a non-owning handle back to the orchestrator, used to
	// start child jobs and record journal events.
	crawler *Crawler

	// url is the worker's canonical domain+path URL.
	url *url.URL

	// mu serializes Start invocations.
	mu sync.Mutex

	// lastFetch is the completion time of the last successful fetch.
	// Zero until the first success; never set on failure, so a failed
	// URL is immediately retryable on its next discovery.
	lastFetch time.Time
}

func newWorker(c *Crawler, u *url.URL) *Worker {
	return &Worker{crawler: c, url: u}
}

// Start fetches the worker's page unless a successful fetch happened
// within the staleness window, then fans the text out to the partition
// scanners. Start returns once the fetch is done; it does not wait for
// extraction or for the child jobs extraction spawns.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastFetch.IsZero() && time.Since(w.lastFetch) < w.crawler.staleWindow {
		return nil
	}

	w.crawler.logger.Info("crawling url", "url", w.url.String())

	began := time.Now()
	text, err := w.crawler.fetcher.Fetch(ctx, w.url)
	elapsed := time.Since(began)
	if err != nil {
		w.crawler.recordFetch(ctx, w.url, elapsed, KindFetchFailed)
		return &Error{Kind: KindFetchFailed, URL: w.url.String(), Err: err}
	}

	w.lastFetch = time.Now()
	w.crawler.recordFetch(ctx, w.url, elapsed, 0)

	w.dispatch(ctx, text)
	return nil
}

// dispatch runs the partition scanners over the fetched text. The
// scanners run under one errgroup so a panic or cancellation is
// observed in one place, but dispatch itself returns immediately: the
// originating job does not wait for its discoveries.
func (w *Worker) dispatch(ctx context.Context, text string) {
	partitions := w.crawler.partitions

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < partitions; i++ {
			g.Go(func() error {
				w.scanPartition(gctx, i, text)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			w.crawler.logger.Error("extraction aborted", "url", w.url.String(), "error", err)
		}
	}()
}

// scanPartition extracts this partition's share of the anchors and
// starts a child job for each valid link. Per-link failures are reported
// and never stop the remaining anchors.
func (w *Worker) scanPartition(ctx context.Context, index int, text string) {
	s := htmlscan.NewAnchorScanner(text, index, w.crawler.partitions)
	for s.Scan() {
		link, err := w.resolveLink(s.Href())
		if err != nil {
			w.crawler.report(ctx, err)
			continue
		}

		// Each discovered link is its own unit of work.
		go func() {
			if err := w.crawler.StartJob(ctx, w.url, link); err != nil {
				w.crawler.report(ctx, err)
			}
		}()
	}
}

// resolveLink turns an href into an absolute same-site URL.
//
// Hrefs parse in one of three ways: an absolute URL is used as is, a
// relative or host-less reference is resolved against the worker's URL,
// and anything else is a parse error for that single link. A resolved
// link whose scheme or host differs from the worker's is a cross-domain
// link: an expected outcome that the caller suppresses.
func (w *Worker) resolveLink(href string) (*url.URL, error) {
	link, err := url.Parse(href)
	if err != nil {
		return nil, &Error{Kind: KindLinkParse, URL: href, Related: w.url.String(), Err: err}
	}

	if !link.IsAbs() {
		link = w.url.ResolveReference(link)
		if link.Host == "" {
			return nil, &Error{Kind: KindRelativeLink, URL: href, Related: w.url.String()}
		}
	}

	if !urlnorm.SameSite(w.url, link) {
		return nil, &Error{Kind: KindCrossDomain, URL: link.String(), Related: w.url.String()}
	}

	return link, nil
}

// workerRegistry guards the workers behind a reader/writer lock.
// Keys are domain+path URL strings.
type workerRegistry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

func newWorkerRegistry() workerRegistry {
	return workerRegistry{workers: make(map[string]*Worker)}
}

// get returns the worker for key, or nil.
func (r *workerRegistry) get(key string) *Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workers[key]
}

// getOrCreate returns the worker for key, creating it via make if
// absent. Creation is idempotence-checked under the write lock: two
// racing callers get the same worker.
func (r *workerRegistry) getOrCreate(key string, make func() *Worker) (*Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workers[key]; ok {
		return w, false
	}
	w := make()
	r.workers[key] = w
	return w, true
}

// size returns the number of registered workers.
func (r *workerRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

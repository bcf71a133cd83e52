package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"crawld/internal/journal"
	"crawld/internal/model"
	"crawld/internal/urlnorm"
)

// Defaults for orchestrator tuning knobs. Overridable via options.
const (
	// DefaultStaleWindow is the minimum time between two fetches of the
	// same canonical URL. It is the crawl's sole dedup/caching mechanism:
	// it throttles re-visits, not initial breadth.
	DefaultStaleWindow = time.Minute

	// DefaultPartitions is the number of parallel anchor scanners each
	// fetched page is fanned out to.
	DefaultPartitions = 4
)

// Crawler is the orchestrator: it owns the domain flags, the workers,
// and the discovery tree, and serves the start/stop/list commands.
// All three registries are locked independently; operations touching
// more than one do not assume atomicity across them, which is safe
// because worker creation is idempotence-checked at the point of use.
type Crawler struct {
	fetcher Fetcher
	logger  *slog.Logger

	// out receives the rendered tree from list commands. The tree is an
	// operator-facing console surface, not a return value.
	out io.Writer

	// journal is the optional diagnostics sink. Nil disables recording.
	journal *journal.Journal

	staleWindow time.Duration
	partitions  int

	domains domainRegistry
	workers workerRegistry
	tree    linkTree

	// Suppressed-diagnostic counters. These outcomes are expected and
	// kept out of the logs, but their volume is still worth knowing.
	crossDomainDropped atomic.Int64
	stoppedSkips       atomic.Int64
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithOutput sets the writer list commands render the tree to.
// Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Crawler) {
		c.out = w
	}
}

// WithJournal sets the fetch journal. Without one, nothing is recorded.
func WithJournal(j *journal.Journal) Option {
	return func(c *Crawler) {
		c.journal = j
	}
}

// WithStaleWindow overrides the staleness window.
func WithStaleWindow(d time.Duration) Option {
	return func(c *Crawler) {
		if d > 0 {
			c.staleWindow = d
		}
	}
}

// WithPartitions overrides the number of parallel anchor scanners.
func WithPartitions(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.partitions = n
		}
	}
}

// New creates a Crawler that fetches pages through the given Fetcher.
func New(fetcher Fetcher, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:     fetcher,
		out:         os.Stdout,
		staleWindow: DefaultStaleWindow,
		partitions:  DefaultPartitions,
		domains:     newDomainRegistry(),
		workers:     newWorkerRegistry(),
		tree:        newLinkTree(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// HandleCommand dispatches one decoded command. The call itself is
// synchronous, but a start command leaves background extraction and
// recursive discovery running after it returns.
func (c *Crawler) HandleCommand(ctx context.Context, cmd model.Command) error {
	c.logger.Info("handling command", "command", cmd.String())

	switch cmd.Kind {
	case model.CommandStart:
		return c.handleStart(ctx, cmd.URL)
	case model.CommandStop:
		return c.handleStop(cmd.URL)
	case model.CommandList:
		return c.handleList()
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownCommand, cmd.Kind)
	}
}

// handleStart activates the URL's domain and starts its crawl job.
func (c *Crawler) handleStart(ctx context.Context, raw string) error {
	u, err := parseAbsolute(raw)
	if err != nil {
		return err
	}

	root := urlnorm.DomainOnly(u).String()
	c.domains.startCrawling(root)
	c.tree.register(root)

	return c.StartJob(ctx, nil, u)
}

// handleStop clears the domain's crawling flag. In-flight jobs are not
// cancelled or signalled; they quiesce at their next StartJob check.
func (c *Crawler) handleStop(raw string) error {
	u, err := parseAbsolute(raw)
	if err != nil {
		return err
	}

	root := urlnorm.DomainOnly(u).String()
	if !c.domains.stopCrawling(root) {
		c.logger.Warn("stop for unknown domain", "domain", root)
		return nil
	}

	c.logger.Info("stopped crawling", "domain", root)
	return nil
}

// handleList renders the discovery tree for every known domain root.
func (c *Crawler) handleList() error {
	roots := c.domains.keys()
	sort.Strings(roots)
	return c.tree.render(c.out, roots)
}

// StartJob is the recursive crawl entry point, used by an explicit start
// command (parent == nil) and by link discovery (parent == the page the
// link was found on).
//
// A stopped domain makes this a benign no-op: the suppressed outcome is
// counted, and nil is returned so in-flight recursive discovery quiesces
// instead of erroring every descendant.
func (c *Crawler) StartJob(ctx context.Context, parent *url.URL, raw *url.URL) error {
	u := urlnorm.DomainPath(raw)
	key := u.String()
	root := urlnorm.DomainOnly(u).String()

	if !c.domains.isCrawling(root) {
		c.report(ctx, &Error{Kind: KindDomainStopped, URL: key, Related: root})
		return nil
	}

	// A URL enters the tree once, under the page that discovered it
	// first. Repeat discoveries reuse the existing entry without
	// re-parenting, so self-links and mutual links never form a cycle
	// and list output stays finite.
	if parent != nil {
		parentKey := urlnorm.DomainPath(parent).String()
		if !c.tree.adopt(parentKey, key) {
			return &Error{Kind: KindParentNotFound, URL: parentKey, Related: key}
		}
	} else if key != root {
		if !c.tree.adopt(root, key) {
			return &Error{Kind: KindDomainNotFound, URL: key, Related: root}
		}
	} else {
		c.tree.register(key)
	}

	worker, _ := c.workers.getOrCreate(key, func() *Worker {
		return newWorker(c, u)
	})

	return worker.Start(ctx)
}

// Stats is a point-in-time snapshot of the crawl's suppressed
// diagnostics and registry sizes.
type Stats struct {
	// Workers is the number of distinct canonical URLs ever referenced.
	Workers int

	// CrossDomainDropped counts links silently dropped for leaving
	// their originating site.
	CrossDomainDropped int64

	// StoppedSkips counts job dispatches skipped because the owning
	// domain was stopped.
	StoppedSkips int64
}

// Stats returns current crawl statistics.
func (c *Crawler) Stats() Stats {
	return Stats{
		Workers:            c.workers.size(),
		CrossDomainDropped: c.crossDomainDropped.Load(),
		StoppedSkips:       c.stoppedSkips.Load(),
	}
}

// report is the top-level error policy at every task boundary: nothing
// is fatal, reportable errors are logged, and suppressed kinds are
// counted instead. Errors never propagate out of the goroutine that
// produced them.
func (c *Crawler) report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var cerr *Error
	if !errors.As(err, &cerr) {
		c.logger.Error("crawl error", "error", err)
		return
	}

	if cerr.Kind.Reportable() {
		c.logger.Error("crawl error",
			"kind", cerr.Kind.String(),
			"url", cerr.URL,
			"related", cerr.Related,
			"error", err,
		)
		return
	}

	switch cerr.Kind {
	case KindCrossDomain:
		c.crossDomainDropped.Add(1)
	case KindDomainStopped:
		c.stoppedSkips.Add(1)
	}
	c.logger.Debug("suppressed", "kind", cerr.Kind.String(), "url", cerr.URL)

	if c.journal != nil {
		domain := cerr.Related
		if domain == "" {
			domain = cerr.URL
		}
		if jerr := c.journal.CountSuppressed(ctx, domain, cerr.Kind.String()); jerr != nil {
			c.logger.Warn("journal write failed", "error", jerr)
		}
	}
}

// recordFetch writes one fetch outcome to the journal, if one is set.
// failure is zero for a successful fetch.
func (c *Crawler) recordFetch(ctx context.Context, u *url.URL, elapsed time.Duration, failure ErrorKind) {
	if c.journal == nil {
		return
	}

	ev := model.FetchEvent{
		URL:       u.String(),
		Domain:    urlnorm.DomainOnly(u).String(),
		OK:        failure == 0,
		Duration:  elapsed,
		Timestamp: time.Now(),
	}
	if failure != 0 {
		ev.ErrorKind = failure.String()
	}

	if err := c.journal.RecordFetch(ctx, ev); err != nil {
		c.logger.Warn("journal write failed", "url", ev.URL, "error", err)
	}
}

// parseAbsolute parses a command payload as an absolute URL.
func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &Error{Kind: KindInvalidURL, URL: raw}
	}
	return u, nil
}

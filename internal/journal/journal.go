// Package journal provides SQLite-backed recording of crawl diagnostics:
// fetch outcomes and suppressed-outcome counters.
//
// The journal is an audit sink, not crawl state. The orchestrator only
// ever writes to it; nothing in the crawl reads it back, so deleting the
// database changes no crawl behavior and the daemon never resumes work
// from it after a restart.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"crawld/internal/model"
)

// FileName is the journal database file name inside the journal directory.
const FileName = "crawld.db"

// reportFetchLimit caps how many fetch events a domain report carries.
const reportFetchLimit = 200

// Journal is a handle to the diagnostics database.
type Journal struct {
	db   *sql.DB
	path string
}

// Options configures how the journal database is opened.
type Options struct {
	// CreateIfNotExists creates the directory and database file if absent.
	// Reporting commands open with this false to avoid creating an empty
	// journal where none exists.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: the daemon
	// writes from many goroutines while reports may read concurrently.
	EnableWAL bool
}

// DefaultOptions returns the options the daemon opens its journal with.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal in dir.
func Open(dir string, opts Options) (*Journal, error) {
	path := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	// modernc.org/sqlite distinguishes rw (must exist) from rwc (create).
	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite supports one writer; keep the pool at a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, path: path}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (j *Journal) createTables() error {
	schema := `
	-- One row per fetch attempt, successful or not
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		ok INTEGER NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_domain ON fetches(domain);
	CREATE INDEX IF NOT EXISTS idx_fetches_timestamp ON fetches(timestamp);

	-- Counters for outcomes that are expected and therefore not logged
	CREATE TABLE IF NOT EXISTS suppressed (
		domain TEXT NOT NULL,
		kind TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (domain, kind)
	);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// RecordFetch appends one fetch outcome.
func (j *Journal) RecordFetch(ctx context.Context, ev model.FetchEvent) error {
	query := `
	INSERT INTO fetches (url, domain, ok, error_kind, duration_ms)
	VALUES (?, ?, ?, ?, ?)
	`

	ok := 0
	if ev.OK {
		ok = 1
	}

	_, err := j.db.ExecContext(ctx, query,
		ev.URL,
		ev.Domain,
		ok,
		ev.ErrorKind,
		ev.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}

	return nil
}

// CountSuppressed increments the counter for a suppressed outcome under
// a domain.
func (j *Journal) CountSuppressed(ctx context.Context, domain, kind string) error {
	query := `
	INSERT INTO suppressed (domain, kind, count)
	VALUES (?, ?, 1)
	ON CONFLICT(domain, kind) DO UPDATE SET count = count + 1
	`

	if _, err := j.db.ExecContext(ctx, query, domain, kind); err != nil {
		return fmt.Errorf("failed to count suppressed outcome: %w", err)
	}

	return nil
}

// Domains lists every domain with recorded activity.
func (j *Journal) Domains(ctx context.Context) ([]string, error) {
	query := `
	SELECT domain FROM fetches
	UNION
	SELECT domain FROM suppressed
	ORDER BY 1
	`

	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// DomainReport assembles the crawl activity report for one domain.
func (j *Journal) DomainReport(ctx context.Context, domain string) (*model.DomainReport, error) {
	report := &model.DomainReport{
		Domain:      domain,
		GeneratedAt: time.Now(),
		Suppressed:  make(map[string]int64),
	}

	countQuery := `
	SELECT COUNT(*), COALESCE(SUM(ok), 0) FROM fetches WHERE domain = ?
	`
	var total, okCount int
	if err := j.db.QueryRowContext(ctx, countQuery, domain).Scan(&total, &okCount); err != nil {
		return nil, fmt.Errorf("failed to count fetches: %w", err)
	}
	report.TotalFetches = total
	report.OKFetches = okCount
	report.FailedFetches = total - okCount

	fetchQuery := `
	SELECT url, ok, error_kind, duration_ms, timestamp
	FROM fetches
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	rows, err := j.db.QueryContext(ctx, fetchQuery, domain, reportFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ev         model.FetchEvent
			ok         int
			durationMS int64
			timestamp  string
		)
		if err := rows.Scan(&ev.URL, &ok, &ev.ErrorKind, &durationMS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		ev.Domain = domain
		ev.OK = ok == 1
		ev.Duration = time.Duration(durationMS) * time.Millisecond
		ev.Timestamp = parseTimestamp(timestamp)
		report.Fetches = append(report.Fetches, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	suppressedQuery := `
	SELECT kind, count FROM suppressed WHERE domain = ?
	`
	srows, err := j.db.QueryContext(ctx, suppressedQuery, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to query suppressed counters: %w", err)
	}
	defer srows.Close()

	for srows.Next() {
		var (
			kind  string
			count int64
		)
		if err := srows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan counter: %w", err)
		}
		report.Suppressed[kind] = count
	}

	return report, srows.Err()
}

// timestampFormats contains the timestamp formats SQLite may return,
// most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known SQLite timestamp format, returning the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

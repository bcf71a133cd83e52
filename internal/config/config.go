package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultListenAddress is where the daemon accepts command connections.
	// The loopback address is deliberate: commands carry no authentication,
	// so the daemon must not be reachable from other hosts unless an
	// operator explicitly binds it elsewhere.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultFetchTimeout bounds each page fetch. 30 seconds is generous
	// for ordinary sites; a slow page blocks only its own worker, never
	// the command loop, so a long timeout costs little.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultStaleWindow is how long a fetched page stays fresh. A URL
	// rediscovered within this window is not fetched again, which is what
	// keeps recursive crawling of cyclic link graphs finite.
	DefaultStaleWindow = time.Minute

	// DefaultScanWorkers is the number of concurrent link extractors per
	// fetched page. Each scans its own share of the page's anchors, so
	// the value trades goroutines for extraction latency on large pages.
	DefaultScanWorkers = 4

	// DefaultCommandBuffer is the capacity of the channel between the
	// command listener and the crawl orchestrator. A burst of commands
	// beyond this backpressures the accepting connections.
	DefaultCommandBuffer = 32

	// DefaultReadBufferSize is the maximum accepted command message size
	// in bytes. Commands are a kind plus one URL, so anything beyond this
	// is malformed input.
	DefaultReadBufferSize = 1024

	// DefaultUserAgent identifies the crawler in HTTP requests. A
	// descriptive User-Agent lets site operators identify crawler traffic
	// in their logs.
	DefaultUserAgent = "crawld/1.0 (+https://github.com/nao1215/crawld)"

	// DefaultMaxBodySize limits the response body size to read. 5MB is
	// sufficient for most HTML pages while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "crawld"
)

// Config holds all configuration options for the crawl daemon.
// It is populated from defaults, then the optional config file, then CLI
// flags, and passed through the application via dependency injection
// rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ServerConfig, CrawlConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// ListenAddress is the "host:port" the command listener binds to.
	ListenAddress string

	// FetchTimeout is the timeout for each page fetch.
	// This applies to individual requests, not the overall crawl.
	FetchTimeout time.Duration

	// StaleWindow is how long a successful fetch suppresses re-fetching
	// the same URL. Shorter windows re-crawl more aggressively.
	StaleWindow time.Duration

	// ScanWorkers is the number of concurrent link extractors per page.
	// Must be at least 1.
	ScanWorkers int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info level and above is logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the daemon searches for .crawld in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JournalDir is the directory for the SQLite fetch journal.
	// When empty, fetch events are not recorded.
	// Defaults to the XDG data directory when journaling is requested.
	JournalDir string

	// JSONReport enables JSON report output instead of the plain text
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the plain
	// text format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for reports.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// UserAgent is the User-Agent header sent with page fetches.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts, worker
// counts). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		FetchTimeout:  DefaultFetchTimeout,
		StaleWindow:   DefaultStaleWindow,
		ScanWorkers:   DefaultScanWorkers,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for the daemon.
// On Linux: ~/.local/share/crawld
// On macOS: ~/Library/Application Support/crawld
// On Windows: %LOCALAPPDATA%\crawld
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the daemon.
// On Linux: ~/.config/crawld
// On macOS: ~/Library/Application Support/crawld
// On Windows: %APPDATA%\crawld
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return ErrNoListenAddress
	}

	// FetchTimeout must be positive; zero would mean immediate failures
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}

	// StaleWindow must be positive; zero would re-fetch every discovery
	// of a URL and make cyclic link graphs crawl forever
	if c.StaleWindow <= 0 {
		return ErrInvalidStaleWindow
	}

	// At least one extractor must scan each page
	if c.ScanWorkers < 1 {
		return ErrInvalidScanWorkers
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoListenAddress is returned when the listen address is empty.
	// The daemon cannot accept commands without an address to bind to.
	ErrNoListenAddress = errors.New("no listen address: provide host:port via --listen")

	// ErrInvalidFetchTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate fetch failures.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidStaleWindow is returned when the staleness window is not
	// positive. Without a window, cyclic link graphs would crawl forever.
	ErrInvalidStaleWindow = errors.New("invalid stale window: must be positive")

	// ErrInvalidScanWorkers is returned when the scan worker count is below one.
	// Every page needs at least one extractor to find its links.
	ErrInvalidScanWorkers = errors.New("invalid scan workers: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

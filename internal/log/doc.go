// Package log provides crawl-safe logging built on top of the standard
// slog package.
//
// Almost every interesting log attribute in a crawl daemon is derived
// from a fetched page: hrefs, resolved URLs, page titles. That text is
// attacker-controlled, and raw control characters in it can forge log
// lines or corrupt a terminal. This package extends slog to neutralize
// such values before they reach the output:
//   - Control characters (including CR/LF and ANSI escape introducers)
//     are replaced with the Unicode replacement character
//   - Values longer than a fixed cap are truncated with an ellipsis so
//     that a pathological URL cannot bloat the log stream
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("crawling url",
//	    "url", untrustedURL, // control characters never reach the log
//	)
//
//	slog.SetDefault(logger)
package log

// Package config provides configuration structures and utilities for the
// crawl daemon. It defines the daemon's listen and crawl settings, report
// generation preferences, and the optional YAML configuration file.
package config

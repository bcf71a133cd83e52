package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".crawld"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .crawld configuration file.
// Durations are written as Go duration strings ("30s", "2m") because
// YAML has no native duration type.
type File struct {
	// ListenAddress overrides the daemon's listen address.
	ListenAddress string `yaml:"listen,omitempty"`

	// FetchTimeout overrides the per-fetch timeout, e.g. "30s".
	FetchTimeout string `yaml:"fetchTimeout,omitempty"`

	// StaleWindow overrides the fetch staleness window, e.g. "1m".
	StaleWindow string `yaml:"staleWindow,omitempty"`

	// ScanWorkers overrides the per-page extractor count.
	ScanWorkers int `yaml:"scanWorkers,omitempty"`

	// UserAgent overrides the User-Agent header for page fetches.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize overrides the response body cap in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// JournalDir overrides the fetch journal directory.
	JournalDir string `yaml:"journalDir,omitempty"`
}

// LoadConfigFile loads daemon settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies the file's non-empty settings onto cfg. Flag handling
// runs after Apply, so explicit flags still win over the file.
func (cf *File) Apply(cfg *Config) error {
	if cf.ListenAddress != "" {
		cfg.ListenAddress = cf.ListenAddress
	}
	if cf.FetchTimeout != "" {
		d, err := time.ParseDuration(cf.FetchTimeout)
		if err != nil {
			return fmt.Errorf("invalid fetchTimeout %q: %w", cf.FetchTimeout, err)
		}
		cfg.FetchTimeout = d
	}
	if cf.StaleWindow != "" {
		d, err := time.ParseDuration(cf.StaleWindow)
		if err != nil {
			return fmt.Errorf("invalid staleWindow %q: %w", cf.StaleWindow, err)
		}
		cfg.StaleWindow = d
	}
	if cf.ScanWorkers != 0 {
		cfg.ScanWorkers = cf.ScanWorkers
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.MaxBodySize != 0 {
		cfg.MaxBodySize = cf.MaxBodySize
	}
	if cf.JournalDir != "" {
		cfg.JournalDir = cf.JournalDir
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .crawld in the current directory
// 3. Look for .crawld in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

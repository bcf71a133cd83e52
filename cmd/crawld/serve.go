package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crawld/internal/config"
	"crawld/internal/crawler"
	"crawld/internal/fetch"
	"crawld/internal/journal"
	"crawld/internal/log"
	"crawld/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the crawl daemon",
		Long: `Serve runs the crawl daemon in the foreground.

The daemon listens for start, stop, and list commands over TCP and
crawls started URLs recursively. Crawling stays within each URL's own
domain; links to other domains are recorded as dropped, never followed.

Examples:
  # Run with defaults (listens on 127.0.0.1:8080)
  crawld serve

  # Listen elsewhere and keep a fetch journal
  crawld serve --listen 127.0.0.1:9000 --journal-dir /var/lib/crawld

  # Use a custom configuration file
  crawld serve -c myconfig.yaml

Configuration file (.crawld) example:
  listen: "127.0.0.1:8080"
  fetchTimeout: "30s"
  staleWindow: "1m"
  scanWorkers: 4`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on for commands (host:port)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crawld in current or home directory)")
	cmd.Flags().StringP("journal-dir", "j", "",
		"Directory for the SQLite fetch journal (empty disables journaling)")
	cmd.Flags().DurationP("fetch-timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each page fetch")
	cmd.Flags().DurationP("stale-window", "w", config.DefaultStaleWindow,
		"How long a fetched page stays fresh before it may be re-fetched")
	cmd.Flags().IntP("scan-workers", "s", config.DefaultScanWorkers,
		"Concurrent link extractors per fetched page")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header for page fetches")
	cmd.Flags().Int64P("max-body-size", "b", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping...")
		cancel()
	}()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig builds the daemon configuration: defaults first, then
// the optional config file, then explicit flags on top.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		cf, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
		cfg.ConfigFilePath = found
	} else if configPath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddress, _ = flags.GetString("listen")
	}
	if flags.Changed("journal-dir") {
		cfg.JournalDir, _ = flags.GetString("journal-dir")
	}
	if flags.Changed("fetch-timeout") {
		cfg.FetchTimeout, _ = flags.GetDuration("fetch-timeout")
	}
	if flags.Changed("stale-window") {
		cfg.StaleWindow, _ = flags.GetDuration("stale-window")
	}
	if flags.Changed("scan-workers") {
		cfg.ScanWorkers, _ = flags.GetInt("scan-workers")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("max-body-size") {
		cfg.MaxBodySize, _ = flags.GetInt64("max-body-size")
	}

	return cfg, nil
}

// runServe wires the fetcher, journal, crawler, and command server
// together and blocks until the context is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	crawlerOpts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithStaleWindow(cfg.StaleWindow),
		crawler.WithPartitions(cfg.ScanWorkers),
	}

	if cfg.JournalDir != "" {
		jnl, err := journal.Open(cfg.JournalDir, journal.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() {
			if err := jnl.Close(); err != nil {
				logger.Error("failed to close journal", "error", err)
			}
		}()
		logger.Info("journaling fetches", "dir", cfg.JournalDir)
		crawlerOpts = append(crawlerOpts, crawler.WithJournal(jnl))
	}

	c := crawler.New(fetcher, crawlerOpts...)
	srv := server.New(cfg.ListenAddress, server.WithLogger(logger))

	dispatchDone := make(chan struct{})
	go func() {
		srv.Dispatch(ctx, c.HandleCommand)
		close(dispatchDone)
	}()

	err := srv.ListenAndServe(ctx)

	// The listener is down and the command channel closed; give the
	// dispatch loop a moment to observe it.
	select {
	case <-dispatchDone:
	case <-time.After(5 * time.Second):
		logger.Warn("dispatch loop did not stop in time")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stats := c.Stats()
	logger.Info("daemon stopped",
		"workers", stats.Workers,
		"cross_domain_dropped", stats.CrossDomainDropped,
		"stopped_skips", stats.StoppedSkips,
	)
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crawld/internal/config"
	"crawld/internal/journal"
	"crawld/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [domain]",
		Short: "Report crawl activity from the fetch journal",
		Long: `Report reads the fetch journal a daemon wrote with --journal-dir and
summarizes crawl activity for one domain: fetch counts, suppressed
outcomes, and the most recent fetches.

Without a domain argument, the known domains are listed instead.

Examples:
  # List domains present in the journal
  crawld report --journal-dir /var/lib/crawld

  # Full report for one domain
  crawld report http://example.com --journal-dir /var/lib/crawld

  # Machine-readable output
  crawld report http://example.com -j /var/lib/crawld --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("journal-dir", "j", config.XDGDataDir(),
		"Directory containing the fetch journal")
	cmd.Flags().Bool("json", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().Bool("markdown", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("journal-dir")
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	asMarkdown, _ := cmd.Flags().GetBool("markdown")
	if asJSON && asMarkdown {
		return config.ErrConflictingReportFormats
	}

	// Reporting never creates a journal; a missing one is the answer
	// that no daemon has journaled here.
	jnl, err := journal.Open(dir, journal.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open journal in %s: %w", dir, err)
	}
	defer jnl.Close()

	ctx := cmd.Context()

	if len(args) == 0 {
		domains, err := jnl.Domains(ctx)
		if err != nil {
			return err
		}
		if len(domains) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(domains, "\n"))
		return nil
	}

	domainReport, err := jnl.DomainReport(ctx, args[0])
	if err != nil {
		return err
	}

	out, closeOut, err := reportDestination(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	var w report.Writer
	switch {
	case asJSON:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case asMarkdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out)
	}

	_, err = w.Write(domainReport)
	return err
}

// reportDestination resolves the --output flag to a writer. The cleanup
// function is a no-op when writing to stdout.
func reportDestination(cmd *cobra.Command) (io.Writer, func(), error) {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"crawld/internal/model"
)

// TextWriter outputs reports in a human-readable plain text format.
// This is the default format, designed for reading in a terminal.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as plain text.
func (w *TextWriter) Write(report *model.DomainReport) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Crawl report for %s\n", report.Domain)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Fetches:   %d total, %d ok, %d failed\n",
		report.TotalFetches, report.OKFetches, report.FailedFetches)

	if len(report.Suppressed) > 0 {
		b.WriteString("\nSuppressed outcomes:\n")
		kinds := make([]string, 0, len(report.Suppressed))
		for kind := range report.Suppressed {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(&b, "  %-24s %d\n", kind, report.Suppressed[kind])
		}
	}

	if len(report.Fetches) > 0 {
		b.WriteString("\nRecent fetches:\n")
		for _, ev := range report.Fetches {
			status := "ok"
			if !ev.OK {
				status = "failed (" + ev.ErrorKind + ")"
			}
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				ev.Timestamp.Format("2006-01-02 15:04:05"), ev.URL, ev.Duration, status)
		}
	}

	return w.output.Write([]byte(b.String()))
}

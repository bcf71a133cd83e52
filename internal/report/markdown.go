package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"crawld/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.DomainReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSuppressed(md, report)
	w.writeFetches(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.DomainReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Domain", "`" + report.Domain + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Total Fetches", strconv.Itoa(report.TotalFetches)},
			{"Successful", strconv.Itoa(report.OKFetches)},
			{"Failed", strconv.Itoa(report.FailedFetches)},
		},
	})
	md.PlainText("")
}

// writeSuppressed writes the suppressed outcome counters, if any.
func (w *MarkdownWriter) writeSuppressed(md *markdown.Markdown, report *model.DomainReport) {
	if len(report.Suppressed) == 0 {
		return
	}

	md.H2("Suppressed Outcomes")
	md.PlainText("")

	kinds := make([]string, 0, len(report.Suppressed))
	for kind := range report.Suppressed {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	rows := make([][]string, 0, len(kinds))
	for _, kind := range kinds {
		rows = append(rows, []string{kind, strconv.FormatInt(report.Suppressed[kind], 10)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFetches writes the recent fetch event table, if any.
func (w *MarkdownWriter) writeFetches(md *markdown.Markdown, report *model.DomainReport) {
	if len(report.Fetches) == 0 {
		return
	}

	md.H2("Recent Fetches")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Fetches))
	for _, ev := range report.Fetches {
		status := "✅"
		if !ev.OK {
			status = "❌ " + ev.ErrorKind
		}
		rows = append(rows, []string{
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			"`" + ev.URL + "`",
			ev.Duration.String(),
			status,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Time", "URL", "Duration", "Status"},
		Rows:   rows,
	})
}

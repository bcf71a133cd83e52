// Package report renders per-domain crawl activity reports from the
// fetch journal. It supports plain text for terminals, JSON for tool
// integration, and GitHub-flavored Markdown for sharing.
package report

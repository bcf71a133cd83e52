package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"crawld/internal/model"
)

func sampleReport() *model.DomainReport {
	ts := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return &model.DomainReport{
		Domain:        "http://site.com",
		GeneratedAt:   ts,
		TotalFetches:  3,
		OKFetches:     2,
		FailedFetches: 1,
		Suppressed: map[string]int64{
			"cross-domain link": 5,
			"domain stopped":    2,
		},
		Fetches: []model.FetchEvent{
			{
				URL:       "http://site.com/a",
				Domain:    "http://site.com",
				OK:        true,
				Duration:  120 * time.Millisecond,
				Timestamp: ts,
			},
			{
				URL:       "http://site.com/broken",
				Domain:    "http://site.com",
				OK:        false,
				ErrorKind: "fetch failed",
				Duration:  time.Second,
				Timestamp: ts,
			},
		},
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewTextWriter(&buf).Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"Crawl report for http://site.com",
		"3 total, 2 ok, 1 failed",
		"cross-domain link",
		"http://site.com/broken",
		"failed (fetch failed)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}

		var got model.DomainReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Domain != "http://site.com" {
			t.Errorf("Domain = %q, want %q", got.Domain, "http://site.com")
		}
		if got.TotalFetches != 3 {
			t.Errorf("TotalFetches = %d, want 3", got.TotalFetches)
		}
		if len(got.Fetches) != 2 {
			t.Errorf("Fetches = %d entries, want 2", len(got.Fetches))
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport()); err != nil {
			t.Fatalf("Write() failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("pretty printed output has no indentation")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Crawl Report",
		"## Suppressed Outcomes",
		"## Recent Fetches",
		"`http://site.com`",
		"cross-domain link",
		"fetch failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWriterOmitsEmptySections(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := &model.DomainReport{
		Domain:      "http://quiet.com",
		GeneratedAt: time.Now(),
	}
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "Suppressed Outcomes") {
		t.Error("empty report should not have a suppressed section")
	}
	if strings.Contains(out, "Recent Fetches") {
		t.Error("empty report should not have a fetches section")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("Write() = %d bytes, want %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("both writers should receive output")
	}
}

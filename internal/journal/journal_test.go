package journal

import (
	"context"
	"testing"
	"time"

	"crawld/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() {
		if err := j.Close(); err != nil {
			t.Errorf("failed to close journal: %v", err)
		}
	})
	return j
}

func TestJournalRecordAndReport(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	events := []model.FetchEvent{
		{URL: "http://site.com/a", Domain: "http://site.com", OK: true, Duration: 120 * time.Millisecond},
		{URL: "http://site.com/b", Domain: "http://site.com", OK: false, ErrorKind: "fetch failed", Duration: 30 * time.Millisecond},
		{URL: "http://other.com", Domain: "http://other.com", OK: true, Duration: 80 * time.Millisecond},
	}
	for _, ev := range events {
		if err := j.RecordFetch(ctx, ev); err != nil {
			t.Fatalf("RecordFetch(%s) failed: %v", ev.URL, err)
		}
	}

	report, err := j.DomainReport(ctx, "http://site.com")
	if err != nil {
		t.Fatalf("DomainReport failed: %v", err)
	}

	if report.TotalFetches != 2 {
		t.Errorf("TotalFetches = %d, want 2", report.TotalFetches)
	}
	if report.OKFetches != 1 {
		t.Errorf("OKFetches = %d, want 1", report.OKFetches)
	}
	if report.FailedFetches != 1 {
		t.Errorf("FailedFetches = %d, want 1", report.FailedFetches)
	}
	if len(report.Fetches) != 2 {
		t.Fatalf("expected 2 fetch events, got %d", len(report.Fetches))
	}
	for _, ev := range report.Fetches {
		if ev.Domain != "http://site.com" {
			t.Errorf("fetch event for foreign domain leaked into report: %+v", ev)
		}
	}
}

func TestJournalSuppressedCounters(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	for range 3 {
		if err := j.CountSuppressed(ctx, "http://site.com", "cross-domain link"); err != nil {
			t.Fatalf("CountSuppressed failed: %v", err)
		}
	}
	if err := j.CountSuppressed(ctx, "http://site.com", "domain stopped"); err != nil {
		t.Fatalf("CountSuppressed failed: %v", err)
	}

	report, err := j.DomainReport(ctx, "http://site.com")
	if err != nil {
		t.Fatalf("DomainReport failed: %v", err)
	}

	if got := report.Suppressed["cross-domain link"]; got != 3 {
		t.Errorf("cross-domain counter = %d, want 3", got)
	}
	if got := report.Suppressed["domain stopped"]; got != 1 {
		t.Errorf("domain stopped counter = %d, want 1", got)
	}
}

func TestJournalDomains(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.RecordFetch(ctx, model.FetchEvent{URL: "http://b.com/x", Domain: "http://b.com", OK: true}); err != nil {
		t.Fatalf("RecordFetch failed: %v", err)
	}
	if err := j.CountSuppressed(ctx, "http://a.com", "cross-domain link"); err != nil {
		t.Fatalf("CountSuppressed failed: %v", err)
	}

	domains, err := j.Domains(ctx)
	if err != nil {
		t.Fatalf("Domains failed: %v", err)
	}

	want := []string{"http://a.com", "http://b.com"}
	if len(domains) != len(want) {
		t.Fatalf("Domains = %v, want %v", domains, want)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Errorf("Domains[%d] = %q, want %q", i, domains[i], want[i])
		}
	}
}

func TestJournalOpenMissingWithoutCreate(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("expected error opening missing journal without create option")
	}
}

func TestJournalEmptyDomainReport(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)

	report, err := j.DomainReport(context.Background(), "http://nothing.com")
	if err != nil {
		t.Fatalf("DomainReport failed: %v", err)
	}
	if report.TotalFetches != 0 || len(report.Fetches) != 0 || len(report.Suppressed) != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}

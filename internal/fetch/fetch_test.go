package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func TestClientFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns page text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("User-Agent"); got != "test-agent" {
				t.Errorf("User-Agent = %q, want %q", got, "test-agent")
			}
			w.Write([]byte(`<a href="/next">next</a>`))
		}))
		defer srv.Close()

		c := NewClient(WithUserAgent("test-agent"))
		text, err := c.Fetch(context.Background(), mustParseURL(t, srv.URL))
		if err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
		if want := `<a href="/next">next</a>`; text != want {
			t.Errorf("Fetch() = %q, want %q", text, want)
		}
	})

	t.Run("non-2xx bodies are still page text", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`not found, try <a href="/home">home</a>`))
		}))
		defer srv.Close()

		c := NewClient()
		text, err := c.Fetch(context.Background(), mustParseURL(t, srv.URL))
		if err != nil {
			t.Fatalf("Fetch() failed on 404: %v", err)
		}
		if !strings.Contains(text, `href="/home"`) {
			t.Errorf("404 body lost: %q", text)
		}
	})

	t.Run("body is capped at max size", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(strings.Repeat("x", 1024)))
		}))
		defer srv.Close()

		c := NewClient(WithMaxBodySize(16))
		text, err := c.Fetch(context.Background(), mustParseURL(t, srv.URL))
		if err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
		if len(text) != 16 {
			t.Errorf("body length = %d, want 16", len(text))
		}
	})

	t.Run("cancelled context aborts the fetch", func(t *testing.T) {
		t.Parallel()

		blocked := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-blocked
		}))
		defer srv.Close()
		defer close(blocked)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		c := NewClient()
		if _, err := c.Fetch(ctx, mustParseURL(t, srv.URL)); err == nil {
			t.Error("Fetch() with expired context should fail")
		}
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		t.Parallel()

		c := NewClient(WithTimeout(time.Second))
		if _, err := c.Fetch(context.Background(), mustParseURL(t, "http://127.0.0.1:1")); err == nil {
			t.Error("Fetch() to closed port should fail")
		}
	})
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crawld/internal/crawler"
	"crawld/internal/fetch"
	"crawld/internal/server"
)

// TestDaemonEndToEnd wires the real stack together: a TCP command
// server, the crawl orchestrator, and the HTTP fetcher against an
// httptest site. A start command sent by the CLI client must fetch the
// seed page, discover its link, and fetch that too; a list command must
// then render the discovery tree.
func TestDaemonEndToEnd(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	visited := make(map[string]int)

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		visited[r.URL.Path]++
		mu.Unlock()

		if r.URL.Path == "/" {
			fmt.Fprint(w, `<html><a href="/about">about</a></html>`)
			return
		}
		fmt.Fprint(w, "<html></html>")
	}))
	defer site.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	treeOut := &syncBuffer{}
	c := crawler.New(fetch.NewClient(),
		crawler.WithLogger(logger),
		crawler.WithOutput(treeOut),
	)
	srv := server.New("127.0.0.1:0", server.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.ListenAndServe(ctx)
	}()
	dispatchDone := make(chan struct{})
	go func() {
		srv.Dispatch(ctx, c.HandleCommand)
		close(dispatchDone)
	}()
	defer func() {
		cancel()
		if err := <-serveDone; err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
		select {
		case <-dispatchDone:
		case <-time.After(3 * time.Second):
			t.Error("dispatch loop did not stop")
		}
	}()

	waitUntil(t, "server bound", func() bool { return srv.Addr() != "" })

	// Drive it exactly as an operator would, through the CLI.
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"start", site.URL, "--addr", srv.Addr()})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("start command failed: %v", err)
	}

	waitUntil(t, "seed and discovered page fetched", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return visited["/"] >= 1 && visited["/about"] >= 1
	})

	cmd = NewRootCmd()
	cmd.SetArgs([]string{"list", "--addr", srv.Addr()})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("list command failed: %v", err)
	}

	waitUntil(t, "tree rendered", func() bool { return treeOut.Len() > 0 })

	out := treeOut.String()
	if !strings.Contains(out, site.URL) {
		t.Errorf("tree missing root %q:\n%s", site.URL, out)
	}
	if !strings.Contains(out, " /about") {
		t.Errorf("tree missing discovered page:\n%s", out)
	}
}

// syncBuffer is a bytes.Buffer safe to read while the dispatch
// goroutine writes the rendered tree into it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

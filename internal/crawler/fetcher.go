package crawler

import (
	"context"
	"net/url"
)

// Fetcher retrieves the text content of a URL. The crawler performs no
// caching of its own beyond each worker's staleness window, so a Fetcher
// implementation should not cache either.
//
// Implementations must be safe for concurrent use: every worker fetch
// runs on its own goroutine against the same Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, u *url.URL) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, u *url.URL) (string, error) {
	return f(ctx, u)
}

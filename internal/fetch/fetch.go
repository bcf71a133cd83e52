// Package fetch provides the HTTP client that crawl jobs retrieve pages
// with. It deliberately treats every completed response as page text,
// whatever the status code: a 404 page or an error page still carries
// anchors worth following, and deciding otherwise belongs to the caller.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crawld/internal/config"
)

// Client fetches page text over HTTP. It satisfies crawler.Fetcher.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize caps how many body bytes are read from a response.
// Bytes beyond the cap are silently discarded, not an error.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithHTTPClient swaps the underlying *http.Client, for transports with
// custom dialers or for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a Client with the default timeout, user agent and
// body cap applied, then overridden by opts in order.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: config.DefaultFetchTimeout,
		},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the page at u and returns its body as text. The
// request carries ctx, so cancelling the crawl aborts in-flight fetches.
func (c *Client) Fetch(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", u, err)
	}
	return string(body), nil
}

package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Client is the shared HTTP client used by every adapter. It carries the
// browser-like User-Agent that several upstream sources require and a
// per-request timeout bounding worst-case latency per fetch.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient builds a client with the given timeout and User-Agent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// HTTPClient exposes the underlying client for libraries that accept one.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// UserAgent returns the configured User-Agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get issues a GET with the configured User-Agent plus any extra headers.
// Callers own the response body.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return resp, nil
}

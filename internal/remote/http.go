// Package remote is the outbound HTTP client shared by the tile and geocoding
// components.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound request.
const DefaultTimeout = 5 * time.Second

// maxBodySize caps response bodies; a tile or geocode payload is far smaller.
const maxBodySize = 8 << 20

// Client performs GET requests with a fixed User-Agent and timeout.
type Client struct {
	http      *http.Client
	userAgent string
	headers   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The timeout set by
// NewClient is not applied to a replaced client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(cl *Client) { cl.headers[key] = value }
}

// NewClient creates a Client with the given User-Agent and timeout.
// A zero timeout means DefaultTimeout.
func NewClient(userAgent string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		headers:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return body, nil
}

// GetJSON fetches url and unmarshals the JSON body into T.
func GetJSON[T any](ctx context.Context, c *Client, url string) (*T, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// readErrorBody returns a short, single-line excerpt of an error response.
func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", "").Replace(string(body)))
}

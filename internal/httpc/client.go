// Package httpc provides the HTTP client used to query a running dashboard.
// Use it instead of http.DefaultClient so requests always time out.
package httpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultConnectTimeout = 3 * time.Second
)

// maxBody caps how much of a response body is read.
const maxBody = 4 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("GET %s: %d %s: %s", e.URL, e.Status, http.StatusText(e.Status), e.Body)
}

// Client is a shared HTTP client with short, local-network timeouts.
var Client = NewClient(DefaultTimeout)

// NewClient creates an HTTP client with the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: DefaultConnectTimeout,
			}).DialContext,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     30 * time.Second,
		},
	}
}

// Get fetches url and returns the body. Non-2xx responses return a
// *StatusError.
func Get(ctx context.Context, c *http.Client, url string) ([]byte, error) {
	if c == nil {
		c = Client
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func GetJSON(ctx context.Context, c *http.Client, url string, v any) error {
	body, err := Get(ctx, c, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

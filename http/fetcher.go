// Package http serves generated reports and retrieves attachments over HTTP.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Fetcher = (*Fetcher)(nil)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Fetcher retrieves attachments relative to the URL the report was
// published at.
type Fetcher struct {
	base   *url.URL
	client *http.Client
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient sets the HTTP client used for requests.
func WithClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a fetcher for the report directory at baseURL.
func NewFetcher(baseURL string, opts ...FetcherOption) (*Fetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", baseURL)
	}
	f := &Fetcher{base: base, client: http.DefaultClient}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch retrieves the attachment at the slash-separated path p.
func (f *Fetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	u := f.base.JoinPath(strings.Split(p, "/")...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u.String(), Code: resp.StatusCode, Status: resp.Status}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	return data, nil
}

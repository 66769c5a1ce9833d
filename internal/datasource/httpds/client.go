// Package httpds fetches daily reports over HTTP. Each report is a single
// GET against a base URL; there is no retry. A 404 maps to
// datasource.ErrNotFound, any other non-2xx status is an error.
package httpds

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"covidstats/internal/datasource"
)

// Config configures the HTTP client.
//
// Zero values get defaults: Timeout 30s, a fresh *http.Transport honoring
// InsecureSkipVerify.
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// BaseHeaders are added to every request.
	BaseHeaders http.Header

	// Transport overrides the RoundTripper. When set, InsecureSkipVerify is
	// ignored.
	Transport http.RoundTripper
}

// Client is a thin wrapper over http.Client with default headers.
type Client struct {
	httpClient  *http.Client
	baseHeaders http.Header
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout, Transport: transport},
		baseHeaders: cfg.BaseHeaders.Clone(),
	}
}

// Get issues a single GET for url. On success the caller owns the response
// body. Status codes are not interpreted here.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpds: build request: %w", err)
	}
	for k, vs := range c.baseHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpds: get %s: %w", url, err)
	}
	return resp, nil
}

// Report is one daily report published under a base URL.
type Report struct {
	client *Client
	url    string
	name   string
}

var _ datasource.Source = (*Report)(nil)

// NewReport binds name (e.g. 02-17-2022.csv) to baseURL. Names that do not
// follow the MM-DD-YYYY.csv scheme are rejected up front.
func NewReport(c *Client, baseURL, name string) (*Report, error) {
	if !datasource.IsReportName(name) {
		return nil, fmt.Errorf("httpds: report name %q: want MM-DD-YYYY.csv", name)
	}
	return &Report{
		client: c,
		url:    strings.TrimRight(baseURL, "/") + "/" + name,
		name:   name,
	}, nil
}

// Name returns the report file name.
func (r *Report) Name() string { return r.name }

// Open fetches the report. The returned body must be closed.
func (r *Report) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.client.Get(ctx, r.url)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: %s: %w", r.url, datasource.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("httpds: %s: unexpected status %d", r.url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Package http provides an HTTP-based implementation of dbdocs.Fetcher.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/514-labs/dbdocs"
)

// DefaultFetchTimeout is the default timeout for one HTTP request,
// covering connect, headers and body.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent identifies the fetcher to documentation hosts.
const DefaultUserAgent = "dbdocs/1 (+offline documentation packs)"

// Ensure Fetcher implements dbdocs.Fetcher at compile time.
var _ dbdocs.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw content from URLs using HTTP GET requests.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the body at the given URL as stored on the server; a
// Content-Encoding is never undone. Any transport error or non-2xx status
// is reported as EDOWNLOAD, the latter wrapping a *dbdocs.StatusError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "build request for %s", url)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	// Callers receive the stored bytes. Compressed sources are inflated by
	// their fetcher, not by the transport.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, dbdocs.WrapErrorf(&dbdocs.StatusError{StatusCode: resp.StatusCode}, dbdocs.EDOWNLOAD, "fetch %s", url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "read body of %s", url)
	}

	return body, nil
}

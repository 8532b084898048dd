package dbdocs

import (
	"context"
	"fmt"
	"net/http"
)

// Fetcher retrieves raw bytes from URLs.
type Fetcher interface {
	// Fetch performs a GET request and returns the response body.
	// Returns EDOWNLOAD on transport errors and non-2xx responses.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Permanent reports whether repeating the request cannot succeed: any 4xx
// except request timeout and rate limiting.
func (e *StatusError) Permanent() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// SourceFetcher produces normalized documents for a pack from its
// upstream source. Each source kind has its own implementation.
type SourceFetcher interface {
	// FetchSource downloads and normalizes the pack's documentation.
	// When cacheDir is non-empty the raw source is mirrored there on a
	// best-effort basis.
	FetchSource(ctx context.Context, pack *DocPack, cacheDir string) ([]NormalizedDoc, error)
}

// SourceFetchers dispatches on a pack's source kind.
type SourceFetchers map[SourceKind]SourceFetcher

// For returns the fetcher registered for the pack's source kind.
// Returns EINVALID if none is registered.
func (m SourceFetchers) For(pack *DocPack) (SourceFetcher, error) {
	f, ok := m[pack.SourceKind]
	if !ok || f == nil {
		return nil, Errorf(EINVALID, "pack %s: no fetcher for source kind %q", pack, pack.SourceKind)
	}
	return f, nil
}

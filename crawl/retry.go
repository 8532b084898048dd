package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/514-labs/dbdocs"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry calls fetch until it succeeds, sleeping delays[i] before
// retry i+1. It makes len(delays)+1 attempts at most and returns the last
// error when all fail. A permanent HTTP status, such as 404, is returned
// without retrying. Each retry is logged at warn level.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) ([]byte, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var statusErr *dbdocs.StatusError
		if errors.As(err, &statusErr) && statusErr.Permanent() {
			return nil, err
		}
		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if logger != nil {
			logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

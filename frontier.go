package dbdocs

import "context"

// URLFrontier manages a crawl queue with exact deduplication.
type URLFrontier interface {
	// Push adds a URL to the frontier.
	// Returns false if the URL has already been seen.
	Push(url string) bool

	// Pop returns the next URL in first-in, first-out order.
	// Returns false if the frontier is empty.
	Pop() (string, bool)

	// Len returns the number of URLs waiting in the queue.
	Len() int

	// Seen returns the number of distinct URLs ever pushed.
	Seen() int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

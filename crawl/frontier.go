package crawl

import (
	"sync"

	"github.com/514-labs/dbdocs"
)

// Compile-time interface verification.
var _ dbdocs.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory breadth-first URL queue with exact
// deduplication. Popped entries stay in the backing slice; the head
// index advances instead. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	queue []string
	head  int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push adds a URL to the back of the queue.
// Returns false if the URL has already been pushed. URLs are compared
// as given; callers canonicalize first.
func (f *Frontier) Push(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[url]; ok {
		return false
	}
	f.seen[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop returns the oldest queued URL.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.head >= len(f.queue) {
		return "", false
	}
	url := f.queue[f.head]
	f.head++
	return url, true
}

// Len returns the number of URLs waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) - f.head
}

// Seen returns the number of distinct URLs ever pushed.
func (f *Frontier) Seen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

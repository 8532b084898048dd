package crawl

import (
	"context"
	"strings"
	"sync"

	"github.com/514-labs/dbdocs"
	"golang.org/x/time/rate"
)

var _ dbdocs.DomainLimiter = (*DomainLimiter)(nil)

// DefaultRequestsPerSecond is the politeness rate used for documentation
// hosts when none is configured.
const DefaultRequestsPerSecond = 5

// DomainLimiter spaces requests to the same host using one token bucket
// per host. Hosts are compared case-insensitively.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// per host with no bursting. A non-positive rps disables limiting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until a request to domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := strings.ToLower(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

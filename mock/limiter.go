package mock

import (
	"context"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of dbdocs.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}

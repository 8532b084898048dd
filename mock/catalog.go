package mock

import (
	"context"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.Catalog = (*Catalog)(nil)

// Catalog is a mock implementation of dbdocs.Catalog.
type Catalog struct {
	LookupFn func(db, version string) (*dbdocs.DocPack, bool)
	ListFn   func() []*dbdocs.DocPack
}

func (c *Catalog) Lookup(db, version string) (*dbdocs.DocPack, bool) {
	return c.LookupFn(db, version)
}

func (c *Catalog) List() []*dbdocs.DocPack {
	return c.ListFn()
}

var _ dbdocs.LicensePrompter = (*LicensePrompter)(nil)

// LicensePrompter is a mock implementation of dbdocs.LicensePrompter.
type LicensePrompter struct {
	AcceptLicenseFn func(ctx context.Context, pack *dbdocs.DocPack) (bool, error)
}

func (p *LicensePrompter) AcceptLicense(ctx context.Context, pack *dbdocs.DocPack) (bool, error) {
	return p.AcceptLicenseFn(ctx, pack)
}

package mock

import (
	"context"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of dbdocs.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

var _ dbdocs.SourceFetcher = (*SourceFetcher)(nil)

// SourceFetcher is a mock implementation of dbdocs.SourceFetcher.
type SourceFetcher struct {
	FetchSourceFn func(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) ([]dbdocs.NormalizedDoc, error)
}

func (f *SourceFetcher) FetchSource(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) ([]dbdocs.NormalizedDoc, error) {
	return f.FetchSourceFn(ctx, pack, cacheDir)
}

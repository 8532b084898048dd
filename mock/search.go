package mock

import (
	"context"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.Indexer = (*Indexer)(nil)

// Indexer is a mock implementation of dbdocs.Indexer.
type Indexer struct {
	BuildFn func(ctx context.Context, dir string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) error
}

func (i *Indexer) Build(ctx context.Context, dir string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) error {
	return i.BuildFn(ctx, dir, pack, chunks)
}

var _ dbdocs.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of dbdocs.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, indexDir string, q dbdocs.SearchQuery) ([]dbdocs.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, indexDir string, q dbdocs.SearchQuery) ([]dbdocs.SearchResult, error) {
	return s.SearchFn(ctx, indexDir, q)
}

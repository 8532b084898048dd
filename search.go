package dbdocs

import "context"

// DefaultSearchLimit is used when a search asks for zero results.
const DefaultSearchLimit = 10

// Indexer builds the full-text index of one pack.
type Indexer interface {
	// Build indexes chunks into dir. The index becomes visible at dir only
	// once it is fully committed; on error nothing is left at dir.
	// Returns EINDEX on failure.
	Build(ctx context.Context, dir string, pack *DocPack, chunks []*DocChunk) error
}

// SearchQuery scopes a free-text query to one pack.
type SearchQuery struct {
	DB      string
	Version string
	Text    string
	Limit   int
}

// Searcher runs queries against a committed index.
type Searcher interface {
	// Search returns up to q.Limit results ordered by descending score.
	// Returns EINDEX if the index is missing or corrupt and EQUERY if
	// the query text is invalid.
	Search(ctx context.Context, indexDir string, q SearchQuery) ([]SearchResult, error)
}

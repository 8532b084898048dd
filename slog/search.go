package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/514-labs/dbdocs"
)

// Ensure the search decorators implement their interfaces.
var (
	_ dbdocs.Indexer  = (*LoggingIndexer)(nil)
	_ dbdocs.Searcher = (*LoggingSearcher)(nil)
)

// LoggingIndexer wraps an Indexer with logging.
type LoggingIndexer struct {
	next   dbdocs.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next dbdocs.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// Build delegates to the wrapped indexer and logs the chunk count.
func (i *LoggingIndexer) Build(ctx context.Context, dir string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) (err error) {
	defer func(begin time.Time) {
		i.logger.Info("build index",
			"pack", pack.String(),
			"chunks", len(chunks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Build(ctx, dir, pack, chunks)
}

// LoggingSearcher wraps a Searcher with debug logging.
type LoggingSearcher struct {
	next   dbdocs.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next dbdocs.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the query.
func (s *LoggingSearcher) Search(ctx context.Context, indexDir string, q dbdocs.SearchQuery) (results []dbdocs.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("search",
			"pack", q.DB+"@"+q.Version,
			"query", q.Text,
			"results", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, indexDir, q)
}

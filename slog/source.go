package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/514-labs/dbdocs"
)

// Ensure LoggingSourceFetcher implements dbdocs.SourceFetcher.
var _ dbdocs.SourceFetcher = (*LoggingSourceFetcher)(nil)

// LoggingSourceFetcher wraps a SourceFetcher with logging.
type LoggingSourceFetcher struct {
	next   dbdocs.SourceFetcher
	logger *slog.Logger
}

// NewLoggingSourceFetcher creates a new LoggingSourceFetcher.
func NewLoggingSourceFetcher(next dbdocs.SourceFetcher, logger *slog.Logger) *LoggingSourceFetcher {
	return &LoggingSourceFetcher{next: next, logger: logger}
}

// FetchSource delegates to the wrapped fetcher and logs the document count.
func (f *LoggingSourceFetcher) FetchSource(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) (docs []dbdocs.NormalizedDoc, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch source",
			"pack", pack.String(),
			"kind", string(pack.SourceKind),
			"docs", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchSource(ctx, pack, cacheDir)
}

// WrapSourceFetchers returns a copy of fetchers with every entry wrapped.
func WrapSourceFetchers(fetchers dbdocs.SourceFetchers, logger *slog.Logger) dbdocs.SourceFetchers {
	out := make(dbdocs.SourceFetchers, len(fetchers))
	for kind, f := range fetchers {
		out[kind] = NewLoggingSourceFetcher(f, logger)
	}
	return out
}

package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/mock"
	dbslog "github.com/514-labs/dbdocs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingIndexer_Build(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	called := false
	inner := &mock.Indexer{
		BuildFn: func(ctx context.Context, dir string, pack *dbdocs.DocPack, chunks []*dbdocs.DocChunk) error {
			called = true
			assert.Equal(t, "/packs/postgres/16/index", dir)
			return dbdocs.Errorf(dbdocs.EINDEX, "disk full")
		},
	}

	indexer := dbslog.NewLoggingIndexer(inner, debugLogger(&buf))
	err := indexer.Build(context.Background(), "/packs/postgres/16/index",
		&dbdocs.DocPack{DB: "postgres", Version: "16"}, make([]*dbdocs.DocChunk, 2))

	assert.Equal(t, dbdocs.EINDEX, dbdocs.ErrorCode(err))
	assert.True(t, called)
	output := buf.String()
	assert.Contains(t, output, `msg="build index"`)
	assert.Contains(t, output, "chunks=2")
	assert.Contains(t, output, "disk full")
}

func TestLoggingSearcher_Search(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Searcher{
		SearchFn: func(ctx context.Context, indexDir string, q dbdocs.SearchQuery) ([]dbdocs.SearchResult, error) {
			return []dbdocs.SearchResult{{DocID: "a"}, {DocID: "b"}}, nil
		},
	}

	searcher := dbslog.NewLoggingSearcher(inner, debugLogger(&buf))
	results, err := searcher.Search(context.Background(), "/idx",
		dbdocs.SearchQuery{DB: "postgres", Version: "16", Text: "wal_level"})

	require.NoError(t, err)
	assert.Len(t, results, 2)
	output := buf.String()
	assert.Contains(t, output, "msg=search")
	assert.Contains(t, output, "query=wal_level")
	assert.Contains(t, output, "results=2")
}

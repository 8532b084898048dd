package readability_test

import (
	"testing"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("", "https://example.com/docs/16/intro.html")

	require.Error(t, err)
	assert.Equal(t, dbdocs.EINVALID, dbdocs.ErrorCode(err))
}

func TestExtractor_RejectsInvalidPageURL(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("<p>x</p>", "http://[::1")

	require.Error(t, err)
	assert.Equal(t, dbdocs.EINVALID, dbdocs.ErrorCode(err))
}

func TestExtractor_RemovesNavigation(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Test</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<div>
<h2>Checkpoints</h2>
<p>A checkpoint is a point in the write-ahead log sequence at which all data files have been updated to reflect the information in the log. All data files will be flushed to disk.</p>
<p>At checkpoint time, all dirty data pages are flushed to disk and a special checkpoint record is written to the log file so that crash recovery knows where to start.</p>
</div>
</body>
</html>`

	ext := readability.NewExtractor()
	content, err := ext.Extract(html, "https://example.com/docs/16/wal.html")

	require.NoError(t, err)
	assert.Contains(t, content, "write-ahead log")
	assert.NotContains(t, content, "Home Nav Link")
}

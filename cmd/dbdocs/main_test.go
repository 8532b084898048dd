package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/514-labs/dbdocs"
	main "github.com/514-labs/dbdocs/cmd/dbdocs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pages = map[string]string{
	"/docs/16/index.html": `<html><head><title>PostgreSQL 16 Documentation</title></head><body>
<div id="docContent"><h1>PostgreSQL 16 Documentation</h1><p>Welcome.</p>
<a href="wal.html">WAL</a></div></body></html>`,
	"/docs/16/wal.html": `<html><head><title>Write-Ahead Logging</title></head><body>
<div id="docContent"><h1>Write-Ahead Logging</h1><p>WAL ensures data integrity after a crash.</p>
<h2>Checkpoints</h2><p>Checkpoints flush dirty pages to disk.</p></div></body></html>`,
}

// newTestMain serves a small documentation site and returns a Main whose
// catalog points at it.
func newTestMain(t *testing.T) *main.Main {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(fmt.Sprintf(`
packs:
  - db: testdb
    version: "16"
    source_kind: html_crawl
    source_url: %s/docs/16/index.html
    license_name: Test License
    license_url: %s/license
`, server.URL, server.URL)), 0o644))

	return &main.Main{
		Home:        filepath.Join(dir, "home"),
		CatalogPath: catalogPath,
		Stdin:       strings.NewReader(""),
	}
}

func run(t *testing.T, m *main.Main, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("install, search, show and remove a pack", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		stdout, stderr, err := run(t, m, "install", "testdb", "16", "--accept-license")
		require.NoError(t, err, stderr)
		assert.Contains(t, stdout, "Installed testdb@16: 3 documents")

		stdout, _, err = run(t, m, "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "testdb")
		assert.Contains(t, stdout, "16")

		stdout, _, err = run(t, m, "search", "testdb", "16", "checkpoints", "--json")
		require.NoError(t, err)
		var results []dbdocs.SearchResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &results))
		require.NotEmpty(t, results)
		assert.Equal(t, "Write-Ahead Logging > Checkpoints", results[0].Section)

		stdout, _, err = run(t, m, "show", "testdb", "16", results[0].DocID)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Checkpoints flush dirty pages to disk.")

		stdout, _, err = run(t, m, "show", "testdb", "16")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Test License")
		assert.Contains(t, stdout, "Indexed")

		stdout, _, err = run(t, m, "remove", "testdb", "16")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Removed testdb@16")

		_, stderr, err = run(t, m, "search", "testdb", "16", "wal")
		assert.Equal(t, dbdocs.ENOTINSTALLED, dbdocs.ErrorCode(err))
		assert.Contains(t, stderr, "dbdocs install testdb 16")
	})

	t.Run("reports already installed with a hint", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		_, _, err := run(t, m, "install", "testdb", "16", "--accept-license")
		require.NoError(t, err)

		_, stderr, err := run(t, m, "install", "testdb", "16", "--accept-license")

		assert.Equal(t, dbdocs.EINSTALLED, dbdocs.ErrorCode(err))
		assert.Contains(t, stderr, "--force")

		_, _, err = run(t, m, "install", "testdb", "16", "--accept-license", "--force")
		assert.NoError(t, err)
	})

	t.Run("refuses license without a terminal", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)

		_, stderr, err := run(t, m, "install", "testdb", "16")

		assert.Equal(t, dbdocs.ELICENSE, dbdocs.ErrorCode(err))
		assert.Contains(t, stderr, "--accept-license")
		_, err = os.Stat(filepath.Join(m.Home, "packs", "testdb", "16"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("accepts license at an interactive prompt", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Interactive = true
		m.Stdin = strings.NewReader("yes\n")

		_, stderr, err := run(t, m, "install", "testdb", "16")

		require.NoError(t, err)
		assert.Contains(t, stderr, "Test License")
	})

	t.Run("reports unknown pack", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, newTestMain(t), "install", "testdb", "99", "--accept-license")

		assert.Equal(t, dbdocs.ENOTFOUND, dbdocs.ErrorCode(err))
		assert.Contains(t, stderr, "dbdocs available")
	})

	t.Run("lists catalog with install status", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newTestMain(t), "available")

		require.NoError(t, err)
		assert.Contains(t, stdout, "testdb")
		assert.Contains(t, stdout, "postgres", "built-in packs are listed")
		assert.Contains(t, stdout, "absent")
	})

	t.Run("shows helpful message when nothing is installed", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newTestMain(t), "list")

		require.NoError(t, err)
		assert.Contains(t, stdout, "No packs installed")
	})

	t.Run("remove of absent pack fails", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, newTestMain(t), "remove", "testdb", "16")

		assert.Equal(t, dbdocs.ENOTINSTALLED, dbdocs.ErrorCode(err))
		assert.Contains(t, stderr, "error:")
	})

	t.Run("no arguments prints help and fails", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newTestMain(t))

		require.Error(t, err)
		assert.Contains(t, stdout, "install")
	})

	t.Run("help succeeds", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newTestMain(t), "--help")

		require.NoError(t, err)
		assert.Contains(t, stdout, "search")
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, main.FormatBytes(tt.bytes))
	}
}

func TestTerminalPrompter_AcceptLicense(t *testing.T) {
	t.Parallel()

	pack := &dbdocs.DocPack{DB: "postgres", Version: "16", LicenseName: "PostgreSQL License"}

	t.Run("accepts yes", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		p := &main.TerminalPrompter{In: strings.NewReader(" Y \n"), Out: out, Interactive: true}

		ok, err := p.AcceptLicense(context.Background(), pack)

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Contains(t, out.String(), "PostgreSQL License")
	})

	t.Run("declines anything else", func(t *testing.T) {
		t.Parallel()

		p := &main.TerminalPrompter{In: strings.NewReader("nope\n"), Out: &bytes.Buffer{}, Interactive: true}

		ok, err := p.AcceptLicense(context.Background(), pack)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("declines on empty input", func(t *testing.T) {
		t.Parallel()

		p := &main.TerminalPrompter{In: strings.NewReader(""), Out: &bytes.Buffer{}, Interactive: true}

		ok, err := p.AcceptLicense(context.Background(), pack)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("refuses without a terminal", func(t *testing.T) {
		t.Parallel()

		p := &main.TerminalPrompter{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}

		_, err := p.AcceptLicense(context.Background(), pack)

		assert.Equal(t, dbdocs.ELICENSE, dbdocs.ErrorCode(err))
	})
}

package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/crawl"
	"github.com/514-labs/dbdocs/goquery"
	"github.com/514-labs/dbdocs/htmltomarkdown"
	dbhttp "github.com/514-labs/dbdocs/http"
	"github.com/514-labs/dbdocs/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	indexURL = "https://example.com/docs/16/index.html"
	pageA    = "https://example.com/docs/16/a.html"
	pageB    = "https://example.com/docs/16/b.html"
	pageSub  = "https://example.com/docs/16/sub/"
)

// site maps page URLs to the links found on them.
var site = map[string][]string{
	indexURL: {
		pageA + "#intro",
		pageB + "?highlight=x",
		"https://other.example.com/docs/16/c.html",
		"https://example.com/docs/15/a.html",
		"https://example.com/docs/16/logo.png",
		pageA,
	},
	pageA:   {pageSub, indexURL},
	pageB:   {},
	pageSub: {pageB},
}

func testPack() *dbdocs.DocPack {
	return &dbdocs.DocPack{
		DB:         "postgres",
		Version:    "16",
		SourceKind: dbdocs.SourceHTMLCrawl,
		SourceURL:  indexURL,
	}
}

// newSiteFetcher returns a crawl source fetcher over the in-memory site.
// Fetched URLs are appended to visited.
func newSiteFetcher(visited *[]string) *crawl.SourceFetcher {
	return &crawl.SourceFetcher{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) ([]byte, error) {
				*visited = append(*visited, url)
				if _, ok := site[url]; !ok {
					return nil, dbdocs.Errorf(dbdocs.EDOWNLOAD, "GET %s: status 404", url)
				}
				return []byte("<html>" + url + "</html>"), nil
			},
		},
		Parser: &mock.PageParser{
			ParseFn: func(_ string, pageURL string) (*dbdocs.Page, error) {
				return &dbdocs.Page{
					Title:    pageURL,
					Sections: []dbdocs.NormalizedDoc{{Title: pageURL, SectionPath: "Overview", Body: "Body of " + pageURL}},
					Links:    site[pageURL],
				}, nil
			},
		},
		RateLimiter: crawl.NewDomainLimiter(0),
		RetryDelays: []time.Duration{0}, // no retry delay for tests
	}
}

func TestSourceFetcher_FetchSource(t *testing.T) {
	t.Parallel()

	t.Run("visits in-scope pages breadth-first", func(t *testing.T) {
		t.Parallel()

		var visited []string
		f := newSiteFetcher(&visited)

		docs, err := f.FetchSource(context.Background(), testPack(), "")

		require.NoError(t, err)
		assert.Equal(t, []string{indexURL, pageA, pageB, pageSub}, visited)
		require.Len(t, docs, 4)
		for i, d := range docs {
			assert.Equal(t, visited[i], d.SourceURL)
			assert.Equal(t, "Body of "+visited[i], d.Body)
		}
	})

	t.Run("stops at page budget", func(t *testing.T) {
		t.Parallel()

		var visited []string
		f := newSiteFetcher(&visited)
		f.MaxPages = 1

		docs, err := f.FetchSource(context.Background(), testPack(), "")

		require.NoError(t, err)
		assert.Equal(t, []string{indexURL}, visited)
		assert.Len(t, docs, 1)
	})

	t.Run("never visits more pages than the budget", func(t *testing.T) {
		t.Parallel()

		var visited []string
		f := newSiteFetcher(&visited)
		f.MaxPages = 3

		_, err := f.FetchSource(context.Background(), testPack(), "")

		require.NoError(t, err)
		assert.Equal(t, []string{indexURL, pageA, pageB}, visited)
	})

	t.Run("aborts with download error after retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		f := newSiteFetcher(new([]string))
		f.RetryDelays = []time.Duration{0, 0}
		f.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) ([]byte, error) {
				if url == pageA {
					calls++
					return nil, errors.New("connection reset")
				}
				return []byte("<html></html>"), nil
			},
		}

		docs, err := f.FetchSource(context.Background(), testPack(), "")

		require.Error(t, err)
		assert.Nil(t, docs)
		assert.Equal(t, dbdocs.EDOWNLOAD, dbdocs.ErrorCode(err))
		assert.Contains(t, err.Error(), "postgres@16")
		assert.Equal(t, 3, calls)
	})

	t.Run("skips pages that fail to parse", func(t *testing.T) {
		t.Parallel()

		var visited []string
		f := newSiteFetcher(&visited)
		parse := f.Parser.(*mock.PageParser).ParseFn
		f.Parser = &mock.PageParser{
			ParseFn: func(html string, pageURL string) (*dbdocs.Page, error) {
				if pageURL == pageB {
					return nil, dbdocs.Errorf(dbdocs.EPARSE, "malformed")
				}
				return parse(html, pageURL)
			},
		}

		docs, err := f.FetchSource(context.Background(), testPack(), "")

		require.NoError(t, err)
		assert.Equal(t, []string{indexURL, pageA, pageB, pageSub}, visited)
		require.Len(t, docs, 3)
		for _, d := range docs {
			assert.NotEqual(t, pageB, d.SourceURL)
		}
	})

	t.Run("mirrors raw pages into cache dir", func(t *testing.T) {
		t.Parallel()

		cacheDir := filepath.Join(t.TempDir(), "source")
		f := newSiteFetcher(new([]string))
		f.MaxPages = 1

		_, err := f.FetchSource(context.Background(), testPack(), cacheDir)

		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(cacheDir, crawl.CacheKey(indexURL)+".html"))
		require.NoError(t, err)
		assert.Equal(t, "<html>"+indexURL+"</html>", string(data))
	})

	t.Run("rejects relative source URL", func(t *testing.T) {
		t.Parallel()

		f := newSiteFetcher(new([]string))
		pack := testPack()
		pack.SourceURL = "/docs/16/"

		_, err := f.FetchSource(context.Background(), pack, "")

		assert.Equal(t, dbdocs.EINVALID, dbdocs.ErrorCode(err))
	})

	t.Run("waits on the rate limiter before every fetch", func(t *testing.T) {
		t.Parallel()

		var visited, waited []string
		f := newSiteFetcher(&visited)
		f.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				waited = append(waited, domain)
				return nil
			},
		}

		_, err := f.FetchSource(context.Background(), testPack(), "")

		require.NoError(t, err)
		assert.Len(t, waited, len(visited))
		for _, d := range waited {
			assert.Equal(t, "example.com", d)
		}
	})

	t.Run("aborts when the rate limiter fails", func(t *testing.T) {
		t.Parallel()

		var visited []string
		f := newSiteFetcher(&visited)
		limitErr := errors.New("rate: Wait(n=1) would exceed context deadline")
		f.RateLimiter = &mock.DomainLimiter{
			WaitFn: func(context.Context, string) error { return limitErr },
		}

		_, err := f.FetchSource(context.Background(), testPack(), "")

		require.ErrorIs(t, err, limitErr)
		assert.Empty(t, visited)
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newSiteFetcher(new([]string)).FetchSource(ctx, testPack(), "")

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSourceFetcher_FetchSource_overHTTP(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/docs/16/index.html": `<html><head><title>PostgreSQL 16 Documentation</title></head><body>
<div id="docContent"><h1>PostgreSQL 16 Documentation</h1><p>Welcome.</p>
<a href="tutorial.html">Tutorial</a> <a href="/docs/15/index.html">Older</a></div></body></html>`,
		"/docs/16/tutorial.html": `<html><head><title>Tutorial</title></head><body>
<div id="docContent"><h2>Getting Started</h2><p>Install the server.</p></div></body></html>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, page)
	}))
	defer server.Close()

	f := &crawl.SourceFetcher{
		Fetcher:     dbhttp.NewFetcher(dbhttp.WithTimeout(5 * time.Second)),
		Parser:      goquery.NewParser(htmltomarkdown.NewConverter(), nil),
		RateLimiter: crawl.NewDomainLimiter(0),
		RetryDelays: []time.Duration{},
	}
	pack := testPack()
	pack.SourceURL = server.URL + "/docs/16/index.html"

	docs, err := f.FetchSource(context.Background(), pack, "")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "PostgreSQL 16 Documentation", docs[0].SectionPath)
	assert.Equal(t, server.URL+"/docs/16/index.html", docs[0].SourceURL)
	assert.Equal(t, "Getting Started", docs[1].SectionPath)
	assert.Equal(t, "Install the server.", docs[1].Body)
	assert.Equal(t, server.URL+"/docs/16/tutorial.html", docs[1].SourceURL)
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	got, err := crawl.Canonicalize("https://example.com/docs/16/a.html?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/docs/16/a.html", got)

	_, err = crawl.Canonicalize("a.html")
	assert.Error(t, err)
}

func TestScope_Contains(t *testing.T) {
	t.Parallel()

	scope := crawl.Scope{Host: "example.com", Version: "16"}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/docs/16/a.html", true},
		{"https://example.com/docs/16/a.HTM", true},
		{"https://example.com/docs/16/", true},
		{"https://EXAMPLE.com/docs/16/a.html", true},
		{"https://example.com/docs/16/a.pdf", false},
		{"https://example.com/docs/161/a.html", false},
		{"https://example.com/docs/15/a.html", false},
		{"https://cdn.example.com/docs/16/a.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scope.Contains(tt.url))
		})
	}
}

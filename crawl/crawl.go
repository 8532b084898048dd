// Package crawl acquires documentation by following links from a pack's
// base URL. It provides the crawl source fetcher, a breadth-first URL
// frontier, a per-host politeness limiter and fetch retry.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/514-labs/dbdocs"
	"github.com/cespare/xxhash/v2"
)

// DefaultMaxPages bounds a crawl when no page budget is configured.
const DefaultMaxPages = 1000

var _ dbdocs.SourceFetcher = (*SourceFetcher)(nil)

// SourceFetcher crawls html_crawl packs breadth-first from the pack's
// source URL. Pages are fetched one at a time.
type SourceFetcher struct {
	Fetcher     dbdocs.Fetcher
	Parser      dbdocs.PageParser
	RateLimiter dbdocs.DomainLimiter
	Logger      *slog.Logger

	// MaxPages is the page budget. Zero means DefaultMaxPages.
	MaxPages int

	// RetryDelays are the backoff delays between fetch attempts. Nil means
	// DefaultRetryDelays.
	RetryDelays []time.Duration
}

// FetchSource crawls the pack and returns the sections of every visited
// page, stamped with the page's canonical URL, in visit order.
//
// A link is followed only if it is on the base URL's host, its path
// contains /docs/{version}/ and ends in .html, .htm or /. The crawl stops
// once MaxPages pages are visited. A page that cannot be fetched after
// retries aborts the crawl with EDOWNLOAD; a page that cannot be parsed
// is logged and skipped.
func (s *SourceFetcher) FetchSource(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) ([]dbdocs.NormalizedDoc, error) {
	logger := s.logger()

	seed, err := Canonicalize(pack.SourceURL)
	if err != nil {
		return nil, dbdocs.Errorf(dbdocs.EINVALID, "pack %s: invalid source URL %q", pack, pack.SourceURL)
	}
	base, _ := url.Parse(seed)
	scope := Scope{Host: base.Host, Version: pack.Version}

	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	frontier := NewFrontier()
	frontier.Push(seed)

	var docs []dbdocs.NormalizedDoc
	visited := 0
	for visited < maxPages {
		pageURL, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		visited++

		if s.RateLimiter != nil {
			if err := s.RateLimiter.Wait(ctx, base.Host); err != nil {
				return nil, err
			}
		}

		body, err := FetchWithRetry(ctx, pageURL, s.Fetcher.Fetch, logger, delays)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "pack %s: fetch %s", pack, pageURL)
		}
		s.mirror(cacheDir, pageURL, body, logger)

		page, err := s.Parser.Parse(string(body), pageURL)
		if err != nil {
			logger.Warn("skipping unparsable page", "pack", pack.String(), "url", pageURL, "err", err)
			continue
		}

		for _, sec := range page.Sections {
			sec.SourceURL = pageURL
			docs = append(docs, sec)
		}

		for _, link := range page.Links {
			canonical, err := Canonicalize(link)
			if err != nil || !scope.Contains(canonical) {
				continue
			}
			frontier.Push(canonical)
		}
	}

	logger.Debug("crawl finished",
		"pack", pack.String(),
		"visited", visited,
		"discarded", frontier.Len(),
		"sections", len(docs),
	)

	return docs, nil
}

func (s *SourceFetcher) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// mirror writes the raw page into cacheDir, named by the hash of its URL.
// Failures are logged and otherwise ignored.
func (s *SourceFetcher) mirror(cacheDir, pageURL string, body []byte, logger *slog.Logger) {
	if cacheDir == "" {
		return
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logger.Warn("source cache unavailable", "dir", cacheDir, "err", err)
		return
	}
	path := filepath.Join(cacheDir, CacheKey(pageURL)+".html")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		logger.Warn("source cache write failed", "url", pageURL, "err", err)
	}
}

// CacheKey returns the file name stem used to mirror a page.
func CacheKey(pageURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(pageURL))
}

// Canonicalize strips the fragment and query from rawURL.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", rawURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), nil
}

// Scope decides which links a crawl follows.
type Scope struct {
	Host    string
	Version string
}

// Contains reports whether the canonical URL is on the scope's host, under
// /docs/{version}/ and names an HTML page or directory.
func (s Scope) Contains(canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	if !strings.EqualFold(u.Host, s.Host) {
		return false
	}
	if !strings.Contains(u.Path, "/docs/"+s.Version+"/") {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".html") || strings.HasSuffix(p, ".htm") || strings.HasSuffix(p, "/")
}

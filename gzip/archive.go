package gzip

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/514-labs/dbdocs"
)

// DefaultDocsMarker selects the archive entries that hold documentation.
const DefaultDocsMarker = "/docs/"

var _ dbdocs.SourceFetcher = (*ArchiveFetcher)(nil)

// ArchiveFetcher acquires tar_gz packs: a gzip-compressed tar archive of
// markdown files, typically a repository snapshot.
type ArchiveFetcher struct {
	Fetcher dbdocs.Fetcher
	Logger  *slog.Logger

	// Marker is the path fragment an entry must contain to be kept. Entry
	// URLs are built from the path after it. Empty means DefaultDocsMarker.
	Marker string
}

// FetchSource downloads the archive and normalizes every regular .md entry
// whose path contains the marker, in archive order. Entry bytes are decoded
// as UTF-8 with invalid sequences replaced. The entry's URL is the canonical
// base URL joined with its path below the marker, without the extension.
func (f *ArchiveFetcher) FetchSource(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) ([]dbdocs.NormalizedDoc, error) {
	logger := discardLogger(f.Logger)
	marker := f.Marker
	if marker == "" {
		marker = DefaultDocsMarker
	}

	raw, err := f.Fetcher.Fetch(ctx, pack.SourceURL)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "pack %s: fetch %s", pack, pack.SourceURL)
	}
	mirror(cacheDir, ArchiveCacheName, raw, logger)

	zr, err := newReader(raw)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDECOMPRESS, "pack %s: decompress %s", pack, pack.SourceURL)
	}
	defer zr.Close()

	base := strings.TrimSuffix(canonicalBase(pack), "/") + "/"

	var docs []dbdocs.NormalizedDoc
	entries, skipped := 0, 0
	tr := tar.NewReader(zr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dbdocs.WrapErrorf(err, dbdocs.EDECOMPRESS, "pack %s: read archive", pack)
		}

		rel, ok := docsEntry(hdr, marker)
		if !ok {
			skipped++
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, dbdocs.WrapErrorf(err, dbdocs.EDECOMPRESS, "pack %s: read entry %s", pack, hdr.Name)
		}
		entries++

		text := strings.ToValidUTF8(string(data), replacementChar)
		entryURL := base + strings.TrimSuffix(rel, ".md")
		for _, doc := range dbdocs.NormalizeMarkdown(text, strings.TrimSuffix(path.Base(rel), ".md")) {
			doc.SourceURL = entryURL
			docs = append(docs, doc)
		}
	}

	logger.Debug("archive read", "pack", pack.String(), "entries", entries, "skipped", skipped, "sections", len(docs))
	return docs, nil
}

// docsEntry reports whether hdr is a markdown file under marker and
// returns its path relative to the marker.
func docsEntry(hdr *tar.Header, marker string) (string, bool) {
	if hdr.Typeflag != tar.TypeReg {
		return "", false
	}
	name := "/" + strings.TrimPrefix(strings.TrimPrefix(hdr.Name, "./"), "/")
	if !strings.HasSuffix(name, ".md") {
		return "", false
	}
	idx := strings.Index(name, marker)
	if idx == -1 {
		return "", false
	}
	rel := name[idx+len(marker):]
	if rel == "" || rel == ".md" {
		return "", false
	}
	return rel, true
}

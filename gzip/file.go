package gzip

import (
	"context"
	"log/slog"
	"strings"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.SourceFetcher = (*FileFetcher)(nil)

// FileFetcher acquires gzip_file packs: one gzip-compressed markdown
// document split into sections at its headings.
type FileFetcher struct {
	Fetcher dbdocs.Fetcher
	Logger  *slog.Logger
}

// FetchSource downloads and decompresses the pack's source file. Each
// section's URL is the canonical base URL with the section's anchor slug
// as fragment.
func (f *FileFetcher) FetchSource(ctx context.Context, pack *dbdocs.DocPack, cacheDir string) ([]dbdocs.NormalizedDoc, error) {
	logger := discardLogger(f.Logger)

	raw, err := f.Fetcher.Fetch(ctx, pack.SourceURL)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDOWNLOAD, "pack %s: fetch %s", pack, pack.SourceURL)
	}
	mirror(cacheDir, FileCacheName, raw, logger)

	text, err := decompress(raw)
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EDECOMPRESS, "pack %s: decompress %s", pack, pack.SourceURL)
	}

	docs := dbdocs.NormalizeMarkdown(strings.ToValidUTF8(string(text), replacementChar), fileStem(pack.SourceURL))

	base := canonicalBase(pack)
	for i := range docs {
		docs[i].SourceURL = base + "#" + dbdocs.SlugifyAnchor(docs[i].SectionPath)
	}
	return docs, nil
}

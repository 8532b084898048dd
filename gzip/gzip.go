// Package gzip acquires documentation distributed as compressed markdown:
// a single gzip-compressed file or a gzip-compressed tar archive.
package gzip

import (
	"bytes"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/klauspost/compress/gzip"
)

// Names of the mirrored raw sources inside a pack's source directory.
const (
	FileCacheName    = "source.txt.gz"
	ArchiveCacheName = "source.tar.gz"
)

// replacementChar substitutes invalid UTF-8 sequences in decoded text.
const replacementChar = "\uFFFD"

func newReader(raw []byte) (*gzip.Reader, error) {
	return gzip.NewReader(bytes.NewReader(raw))
}

// decompress inflates a complete gzip stream.
func decompress(raw []byte) ([]byte, error) {
	zr, err := newReader(raw)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// mirror writes raw into cacheDir/name. Failures are logged and ignored.
func mirror(cacheDir, name string, raw []byte, logger *slog.Logger) {
	if cacheDir == "" {
		return
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logger.Warn("source cache unavailable", "dir", cacheDir, "err", err)
		return
	}
	if err := os.WriteFile(filepath.Join(cacheDir, name), raw, 0o644); err != nil {
		logger.Warn("source cache write failed", "file", name, "err", err)
	}
}

// canonicalBase returns the URL that section URLs are built from.
func canonicalBase(pack *dbdocs.DocPack) string {
	if pack.CanonicalBaseURL != "" {
		return pack.CanonicalBaseURL
	}
	return pack.SourceURL
}

// fileStem returns the last path element of rawURL without compression
// and markdown extensions, e.g. "reference" for ".../reference.md.gz".
func fileStem(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	for _, ext := range []string{".gz", ".tgz", ".tar", ".txt", ".md", ".markdown"} {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

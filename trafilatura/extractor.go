// Package trafilatura provides a second main-content extractor for pages
// where readability finds nothing.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements dbdocs.Extractor at compile time.
var _ dbdocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content as HTML.
// An empty result means trafilatura found no main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", dbdocs.Errorf(dbdocs.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", dbdocs.Errorf(dbdocs.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", dbdocs.WrapErrorf(err, dbdocs.EPARSE, "extract main content of %s", pageURL)
	}
	if result.ContentNode == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return "", dbdocs.WrapErrorf(err, dbdocs.EPARSE, "render main content of %s", pageURL)
	}
	return buf.String(), nil
}

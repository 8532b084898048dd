// Package readability isolates the main content of pages that do not use
// a recognized documentation container.
package readability

import (
	"net/url"
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements dbdocs.Extractor at compile time.
var _ dbdocs.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content as HTML.
// Heading elements inside the article are kept so the caller can still
// split the content into sections.
func (e *Extractor) Extract(rawHTML string, pageURL string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", dbdocs.Errorf(dbdocs.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return "", dbdocs.Errorf(dbdocs.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
		u = parsed
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return "", dbdocs.WrapErrorf(err, dbdocs.EPARSE, "extract main content of %s", pageURL)
	}

	return article.Content, nil
}

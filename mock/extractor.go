package mock

import "github.com/514-labs/dbdocs"

var _ dbdocs.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of dbdocs.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (string, error)
}

func (e *Extractor) Extract(html string, pageURL string) (string, error) {
	return e.ExtractFn(html, pageURL)
}

package mock

import "github.com/514-labs/dbdocs"

var _ dbdocs.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of dbdocs.PageParser.
type PageParser struct {
	ParseFn func(html string, pageURL string) (*dbdocs.Page, error)
}

func (p *PageParser) Parse(html string, pageURL string) (*dbdocs.Page, error) {
	return p.ParseFn(html, pageURL)
}

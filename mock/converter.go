package mock

import "github.com/514-labs/dbdocs"

var _ dbdocs.Converter = (*Converter)(nil)

// Converter is a mock implementation of dbdocs.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

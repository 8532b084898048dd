// Package htmltomarkdown converts HTML section fragments to Markdown so
// paragraph structure survives into chunking.
package htmltomarkdown

import (
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Ensure Converter implements dbdocs.Converter at compile time.
var _ dbdocs.Converter = (*Converter)(nil)

// Converter renders section HTML as Markdown. Block elements come out
// separated by blank lines, which is where the chunker splits a section
// that exceeds the chunk budget; without them a long section would fall
// back to whitespace splitting mid-paragraph.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter with CommonMark and table support.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms an HTML fragment into Markdown with surrounding blank
// lines trimmed. Returns EINVALID for blank input and EPARSE if conversion
// fails.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", dbdocs.Errorf(dbdocs.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", dbdocs.WrapErrorf(err, dbdocs.EPARSE, "convert HTML to markdown")
	}

	return strings.TrimSpace(result), nil
}

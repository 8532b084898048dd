package dbdocs

import "strings"

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment into Markdown.
	// Paragraph boundaries are preserved as blank lines.
	Convert(html string) (string, error)
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content as HTML.
	Extract(html string, pageURL string) (string, error)
}

// Extractors tries each extractor in order and returns the first
// non-blank result. If every extractor fails, the last error is returned.
type Extractors []Extractor

// Extract implements Extractor.
func (x Extractors) Extract(html string, pageURL string) (string, error) {
	var lastErr error
	for _, e := range x {
		content, err := e.Extract(html, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(content) != "" {
			return content, nil
		}
	}
	return "", lastErr
}

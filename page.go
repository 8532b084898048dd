package dbdocs

// Page is the result of parsing one fetched HTML page.
type Page struct {
	// Title is the page title from metadata or the first heading.
	Title string

	// Sections are the page's normalized sections in document order.
	// SourceURL is left empty; the crawler stamps the canonical URL.
	Sections []NormalizedDoc

	// Links are the absolute URLs of every anchor on the page, in
	// document order, with fragments removed.
	Links []string
}

// PageParser turns fetched HTML into sections and outgoing links.
type PageParser interface {
	// Parse processes raw HTML fetched from pageURL.
	// Returns EPARSE if the page cannot be parsed.
	Parse(html string, pageURL string) (*Page, error)
}

package dbdocs

// MaxChunkBytes is the body size budget of one chunk.
const MaxChunkBytes = 4096

// NormalizedDoc is one logical section found in a source document.
// Body is plain text with paragraphs separated by blank lines.
type NormalizedDoc struct {
	Title       string `json:"title"`
	SectionPath string `json:"section_path"`
	Body        string `json:"body"`
	SourceURL   string `json:"source_url"`
}

// DocChunk is the unit of storage and indexing.
type DocChunk struct {
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	SectionPath string `json:"section_path"`
	Body        string `json:"body"`
	SourceURL   string `json:"source_url"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *DocChunk) Validate() error {
	if c.DocID == "" {
		return Errorf(EINVALID, "chunk doc ID required")
	}
	if c.SourceURL == "" {
		return Errorf(EINVALID, "chunk %s: source URL required", c.DocID)
	}
	return nil
}

// SearchResult is one match returned by a search.
type SearchResult struct {
	DocID     string  `json:"doc_id"`
	Title     string  `json:"title"`
	Section   string  `json:"section"`
	Score     float64 `json:"score"`
	Snippet   string  `json:"snippet"`
	SourceURL string  `json:"source_url"`
}

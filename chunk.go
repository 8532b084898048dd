package dbdocs

import (
	"strconv"
	"strings"
)

// paragraphSep joins paragraphs inside one chunk.
const paragraphSep = "\n\n"

// ChunkDocs splits normalized documents into chunks of at most
// MaxChunkBytes and assigns each chunk its id. Chunk order follows
// document order.
func ChunkDocs(db, versionSlug string, docs []NormalizedDoc) []*DocChunk {
	var chunks []*DocChunk
	for i := range docs {
		chunks = append(chunks, ChunkDoc(db, versionSlug, &docs[i])...)
	}
	return chunks
}

// ChunkDoc splits one document.
//
// Paragraphs (blank-line separated) are packed greedily; a paragraph that
// alone exceeds the budget is split on whitespace into token-packed parts.
// A token longer than the budget is emitted on its own and may exceed it.
// When more than one chunk results, each section path gets a " (Part N)"
// suffix so every chunk has a distinct id.
func ChunkDoc(db, versionSlug string, doc *NormalizedDoc) []*DocChunk {
	bodies := splitBody(doc.Body, MaxChunkBytes)
	if len(bodies) == 0 {
		return nil
	}

	chunks := make([]*DocChunk, 0, len(bodies))
	for i, body := range bodies {
		sectionPath := doc.SectionPath
		if len(bodies) > 1 {
			sectionPath += " (Part " + strconv.Itoa(i+1) + ")"
		}
		chunks = append(chunks, &DocChunk{
			DocID:       MakeDocID(db, versionSlug, doc.SourceURL, sectionPath),
			Title:       doc.Title,
			SectionPath: sectionPath,
			Body:        body,
			SourceURL:   doc.SourceURL,
		})
	}
	return chunks
}

// splitBody returns the chunk bodies for one document body.
func splitBody(body string, limit int) []string {
	var out []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, buf.String())
			buf.Reset()
		}
	}

	for _, para := range splitParagraphs(body) {
		if len(para) > limit {
			flush()
			out = append(out, splitTokens(para, limit)...)
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(para)+len(paragraphSep) > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(paragraphSep)
		}
		buf.WriteString(para)
	}
	flush()

	return out
}

// splitParagraphs splits text on blank lines, trimming each paragraph and
// dropping empty ones.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paras []string
	var cur []string
	emit := func() {
		if p := strings.TrimSpace(strings.Join(cur, "\n")); p != "" {
			paras = append(paras, p)
		}
		cur = cur[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			emit()
			continue
		}
		cur = append(cur, line)
	}
	emit()

	return paras
}

// splitTokens packs whitespace-separated tokens into parts using the same
// greedy rule as paragraphs. Tokens are never split.
func splitTokens(para string, limit int) []string {
	var out []string
	var buf strings.Builder

	for _, tok := range strings.Fields(para) {
		if buf.Len() > 0 && buf.Len()+len(tok)+1 > limit {
			out = append(out, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(tok)
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}

	return out
}

// Package goquery parses documentation HTML pages into sections and links
// using CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/514-labs/dbdocs"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Ensure Parser implements dbdocs.PageParser at compile time.
var _ dbdocs.PageParser = (*Parser)(nil)

// contentSelectors locate the main content container, most specific
// first: DocBook (PostgreSQL), Sphinx, MkDocs, Docusaurus, VuePress and
// generic landmarks.
var contentSelectors = []string{
	"#docContent",
	"div.body[role='main']",
	".md-content",
	".theme-doc-markdown",
	".theme-default-content",
	".VPDoc",
	"[role='main']",
	"main",
	"article",
	"div.body",
	"div.document",
}

// noiseSelectors are removed from the content root before splitting.
const noiseSelectors = "script, style, noscript, svg, nav, footer, button, " +
	".navheader, .navfooter, .headerlink, .hash-link, .md-source-file, " +
	".breadcrumbs, .theme-doc-breadcrumbs, .edit-this-page"

const headingSelectors = "h1, h2, h3, h4"

// Parser splits HTML pages into sections at h1-h4 headings.
type Parser struct {
	// Converter turns section HTML into markdown before stripping.
	Converter dbdocs.Converter

	// Extractor, if set, isolates the main content of pages without a
	// recognized content container.
	Extractor dbdocs.Extractor
}

// NewParser creates a new Parser.
func NewParser(conv dbdocs.Converter, ext dbdocs.Extractor) *Parser {
	return &Parser{Converter: conv, Extractor: ext}
}

// Parse processes raw HTML fetched from pageURL.
//
// Headings h1-h4 inside the content root start new sections whose path is
// the breadcrumb of enclosing headings. Content before the first heading
// is filed under the page title. Sections that fail to convert or have no
// text are skipped.
func (p *Parser) Parse(rawHTML string, pageURL string) (*dbdocs.Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, dbdocs.Errorf(dbdocs.EPARSE, "invalid page URL %q: %v", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EPARSE, "parse HTML of %s", pageURL)
	}

	page := &dbdocs.Page{
		Title: pageTitle(doc),
		Links: extractLinks(doc, base),
	}

	root := p.contentRoot(doc, rawHTML, pageURL)
	root.Find(noiseSelectors).Remove()

	s := &splitter{paths: dbdocs.PathSet{}, path: page.Title}
	walk(root, s)
	s.finish()

	for _, sec := range s.sections {
		body, ok := p.toText(sec.html)
		if !ok {
			continue
		}
		page.Sections = append(page.Sections, dbdocs.NormalizedDoc{
			Title:       page.Title,
			SectionPath: sec.path,
			Body:        body,
		})
	}

	return page, nil
}

// contentRoot returns the first content container with text. Without one,
// the Extractor's output is used, then the whole body.
func (p *Parser) contentRoot(doc *goquery.Document, rawHTML, pageURL string) *goquery.Selection {
	for _, sel := range contentSelectors {
		if root := doc.Find(sel).First(); root.Length() > 0 && strings.TrimSpace(root.Text()) != "" {
			return root
		}
	}

	if p.Extractor != nil {
		if content, err := p.Extractor.Extract(rawHTML, pageURL); err == nil && strings.TrimSpace(content) != "" {
			if extracted, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
				return extracted.Find("body").First()
			}
		}
	}

	return doc.Find("body").First()
}

// toText converts section HTML to plain text. The bool result is false
// when the section should be skipped.
func (p *Parser) toText(sectionHTML string) (string, bool) {
	if strings.TrimSpace(sectionHTML) == "" {
		return "", false
	}
	md, err := p.Converter.Convert(sectionHTML)
	if err != nil {
		return "", false
	}
	body := dbdocs.StripMarkdown(md)
	return body, body != ""
}

// pageTitle returns the <title> text, falling back to the first h1.
func pageTitle(doc *goquery.Document) string {
	if t := collapse(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return collapse(doc.Find("h1").First().Text())
}

// section is the raw HTML collected under one heading.
type section struct {
	path string
	html string
}

// splitter accumulates content blocks between headings.
type splitter struct {
	paths    dbdocs.PathSet
	stack    []heading
	path     string
	buf      strings.Builder
	sections []section
}

type heading struct {
	level int
	text  string
}

func (s *splitter) appendHTML(h string) {
	s.buf.WriteString(h)
	s.buf.WriteByte('\n')
}

func (s *splitter) startSection(level int, text string) {
	s.finish()
	for len(s.stack) > 0 && s.stack[len(s.stack)-1].level >= level {
		s.stack = s.stack[:len(s.stack)-1]
	}
	s.stack = append(s.stack, heading{level: level, text: text})

	titles := make([]string, len(s.stack))
	for i, h := range s.stack {
		titles[i] = h.text
	}
	s.path = strings.Join(titles, dbdocs.SectionSep)
}

// finish closes the current section. Paths are only claimed for
// sections with content, so empty headings do not shift suffixes.
func (s *splitter) finish() {
	if strings.TrimSpace(s.buf.String()) != "" {
		s.sections = append(s.sections, section{
			path: s.paths.Unique(s.path),
			html: s.buf.String(),
		})
	}
	s.buf.Reset()
}

// walk visits sel's children in document order. Elements that contain no
// heading are collected whole; elements that do are descended into.
func walk(sel *goquery.Selection, s *splitter) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		node := c.Get(0)
		switch node.Type {
		case html.TextNode:
			if t := strings.TrimSpace(node.Data); t != "" {
				s.appendHTML("<p>" + html.EscapeString(t) + "</p>")
			}
		case html.ElementNode:
			if level := headingLevel(node.Data); level > 0 {
				if text := collapse(c.Text()); text != "" {
					s.startSection(level, text)
				}
				return
			}
			if c.Find(headingSelectors).Length() == 0 {
				if outer, err := goquery.OuterHtml(c); err == nil {
					s.appendHTML(outer)
				}
				return
			}
			walk(c, s)
		}
	})
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	}
	return 0
}

// collapse trims s and joins internal whitespace runs with one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

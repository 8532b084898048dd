package dbdocs

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// SectionSep joins heading titles into a section path breadcrumb.
const SectionSep = " > "

var (
	atxHeadingRe  = regexp.MustCompile(`^ {0,3}(#{1,6})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
	setextH1Re    = regexp.MustCompile(`^ {0,3}=+[ \t]*$`)
	setextH2Re    = regexp.MustCompile(`^ {0,3}-+[ \t]*$`)
	fenceRe       = regexp.MustCompile("^ {0,3}(```|~~~)")
	frontTitleRe  = regexp.MustCompile(`(?m)^title:[ \t]*["']?(.+?)["']?[ \t]*$`)
	imageRe       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	refLinkRe     = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	linkDefRe     = regexp.MustCompile(`^ {0,3}\[[^\]]+\]:\s+\S+`)
	inlineCodeRe  = regexp.MustCompile("`+([^`]*)`+")
	strongRe      = regexp.MustCompile(`(\*\*|__)([^\s*_](?:[^*_\n]*[^\s*_])?)(\*\*|__)`)
	emStarRe      = regexp.MustCompile(`\*([^\s*](?:[^*\n]*[^\s*])?)\*`)
	emUnderRe     = regexp.MustCompile(`(^|[^\w\\])_([^_\n]+)_([^\w]|$)`)
	htmlTagRe     = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	quoteRe       = regexp.MustCompile(`^ {0,3}(>[ \t]?)+`)
	bulletRe      = regexp.MustCompile(`^([ \t]*)[-*+][ \t]+`)
	orderedRe     = regexp.MustCompile(`^([ \t]*)\d+[.)][ \t]+`)
	ruleRe        = regexp.MustCompile(`^ {0,3}([-*_][ \t]*){3,}$`)
	tableSepRe    = regexp.MustCompile(`^[ \t]*\|?[ \t]*:?-{2,}:?[ \t]*(\|[ \t]*:?-{2,}:?[ \t]*)*\|?[ \t]*$`)
	escapeRe      = regexp.MustCompile(`\\([\\` + "`" + `*_{}\[\]()#+\-.!|<>~])`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
	trailingWSRe  = regexp.MustCompile(`[ \t]+\n`)
)

// heading is an entry of the heading stack used to build breadcrumbs.
type heading struct {
	level int
	title string
}

// NormalizeMarkdown splits a markdown document into sections.
//
// ATX (#) and setext (=== / ---) headings outside fenced code blocks start
// new sections. Each section's path is the breadcrumb of enclosing
// headings; content before the first heading is filed under the document
// title. The title is taken from front matter, then the first level-1
// heading, then fallbackTitle. Bodies are stripped to plain text and
// sections with empty bodies are skipped. SourceURL is left empty for the
// caller to stamp.
func NormalizeMarkdown(raw, fallbackTitle string) []NormalizedDoc {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text, title := splitFrontMatter(text)

	lines := strings.Split(text, "\n")
	if title == "" {
		title = firstH1(lines)
	}
	if title == "" {
		title = fallbackTitle
	}

	var docs []NormalizedDoc
	var stack []heading
	var body []string
	paths := PathSet{}
	path := title

	emit := func() {
		if b := StripMarkdown(strings.Join(body, "\n")); b != "" {
			docs = append(docs, NormalizedDoc{
				Title:       title,
				SectionPath: paths.Unique(path),
				Body:        b,
			})
		}
		body = body[:0]
	}

	push := func(level int, text string) {
		emit()
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, heading{level: level, title: text})
		path = breadcrumb(stack)
	}

	inFence := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if fenceRe.MatchString(line) {
			inFence = !inFence
			body = append(body, line)
			continue
		}
		if inFence {
			body = append(body, line)
			continue
		}

		if m := atxHeadingRe.FindStringSubmatch(line); m != nil {
			if t := headingText(m[2]); t != "" {
				push(len(m[1]), t)
				continue
			}
		}

		if level := setextLevel(lines, i); level > 0 {
			if t := headingText(line); t != "" {
				push(level, t)
				i++ // skip underline
				continue
			}
		}

		body = append(body, line)
	}
	emit()

	return docs
}

// setextLevel returns 1 or 2 if lines[i] is a setext heading, 0 otherwise.
// The heading line must follow a blank line so paragraph continuations
// and horizontal rules are not mistaken for headings.
func setextLevel(lines []string, i int) int {
	if i+1 >= len(lines) || strings.TrimSpace(lines[i]) == "" {
		return 0
	}
	if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
		return 0
	}
	if atxHeadingRe.MatchString(lines[i]) || quoteRe.MatchString(lines[i]) || bulletRe.MatchString(lines[i]) {
		return 0
	}
	switch next := lines[i+1]; {
	case setextH1Re.MatchString(next):
		return 1
	case setextH2Re.MatchString(next):
		return 2
	}
	return 0
}

// splitFrontMatter removes a leading YAML front matter block and returns
// the remaining text and the front matter title, if any.
func splitFrontMatter(text string) (string, string) {
	if !strings.HasPrefix(text, "---\n") {
		return text, ""
	}
	end := strings.Index(text[4:], "\n---")
	if end == -1 {
		return text, ""
	}
	fm := text[4 : 4+end]
	rest := text[4+end+4:]
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	} else {
		rest = ""
	}

	var title string
	if m := frontTitleRe.FindStringSubmatch(fm); m != nil {
		title = strings.TrimSpace(m[1])
	}
	return rest, title
}

// firstH1 returns the text of the first level-1 heading outside code.
func firstH1(lines []string) string {
	inFence := false
	for i, line := range lines {
		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := atxHeadingRe.FindStringSubmatch(line); m != nil && len(m[1]) == 1 {
			return headingText(m[2])
		}
		if setextLevel(lines, i) == 1 {
			return headingText(line)
		}
	}
	return ""
}

// headingText strips inline markup from a heading.
func headingText(s string) string {
	return strings.TrimSpace(stripInline(s))
}

// PathSet hands out unique section paths within one document.
type PathSet map[string]int

// Unique returns path on first use and "path (n)" for the n-th repeat,
// so sections sharing a heading still get distinct ids.
func (s PathSet) Unique(path string) string {
	s[path]++
	if n := s[path]; n > 1 {
		return path + " (" + strconv.Itoa(n) + ")"
	}
	return path
}

func breadcrumb(stack []heading) string {
	titles := make([]string, len(stack))
	for i, h := range stack {
		titles[i] = h.title
	}
	return strings.Join(titles, SectionSep)
}

// StripMarkdown converts markdown to plain text, keeping paragraph
// boundaries as blank lines. Fenced code is kept verbatim without its
// fence lines.
func StripMarkdown(md string) string {
	md = htmlCommentRe.ReplaceAllString(strings.ReplaceAll(md, "\r\n", "\n"), "")

	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	inFence := false

	for _, line := range lines {
		if fenceRe.MatchString(line) {
			inFence = !inFence
			out = append(out, "")
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}

		switch {
		case ruleRe.MatchString(line), tableSepRe.MatchString(line), linkDefRe.MatchString(line):
			out = append(out, "")
			continue
		}

		if m := atxHeadingRe.FindStringSubmatch(line); m != nil {
			line = m[2]
		}
		line = quoteRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "$1")
		line = orderedRe.ReplaceAllString(line, "$1")
		line = tableRow(line)

		out = append(out, strings.TrimRight(stripInline(line), " \t"))
	}

	text := strings.Join(out, "\n")
	text = trailingWSRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripInline removes inline markup from a single line. Code spans are
// kept verbatim without their backticks.
func stripInline(s string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range inlineCodeRe.FindAllStringSubmatchIndex(s, -1) {
		sb.WriteString(stripSpan(s[last:loc[0]]))
		sb.WriteString(s[loc[2]:loc[3]])
		last = loc[1]
	}
	sb.WriteString(stripSpan(s[last:]))
	return sb.String()
}

func stripSpan(s string) string {
	s = imageRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = refLinkRe.ReplaceAllString(s, "$1")
	s = strongRe.ReplaceAllString(s, "$2")
	s = emStarRe.ReplaceAllString(s, "$1")
	s = emUnderRe.ReplaceAllString(s, "$1$2$3")
	s = htmlTagRe.ReplaceAllString(s, "")
	s = escapeRe.ReplaceAllString(s, "$1")
	return html.UnescapeString(s)
}

// tableRow turns "| a | b |" into "a  b".
func tableRow(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") || !strings.HasSuffix(trimmed, "|") || len(trimmed) < 2 {
		return line
	}
	cells := strings.Split(trimmed[1:len(trimmed)-1], "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return strings.Join(cells, "  ")
}

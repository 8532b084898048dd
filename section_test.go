package dbdocs_test

import (
	"testing"

	"github.com/514-labs/dbdocs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("builds breadcrumbs from heading levels", func(t *testing.T) {
		t.Parallel()

		markdown := `# Guide

Intro text.

## Install

Run it.

### Linux

Use apt.

## Usage

Call it.`

		docs := dbdocs.NormalizeMarkdown(markdown, "fallback")

		require.Len(t, docs, 4)
		assert.Equal(t, "Guide", docs[0].SectionPath)
		assert.Equal(t, "Intro text.", docs[0].Body)
		assert.Equal(t, "Guide > Install", docs[1].SectionPath)
		assert.Equal(t, "Guide > Install > Linux", docs[2].SectionPath)
		assert.Equal(t, "Use apt.", docs[2].Body)
		assert.Equal(t, "Guide > Usage", docs[3].SectionPath)
		for _, d := range docs {
			assert.Equal(t, "Guide", d.Title)
			assert.Empty(t, d.SourceURL)
		}
	})

	t.Run("recognizes setext headings", func(t *testing.T) {
		t.Parallel()

		markdown := "Manual\n======\n\nWelcome.\n\nConfig\n------\n\nSet options."

		docs := dbdocs.NormalizeMarkdown(markdown, "")

		require.Len(t, docs, 2)
		assert.Equal(t, "Manual", docs[0].Title)
		assert.Equal(t, "Manual", docs[0].SectionPath)
		assert.Equal(t, "Manual > Config", docs[1].SectionPath)
		assert.Equal(t, "Set options.", docs[1].Body)
	})

	t.Run("ignores hash lines inside code fences", func(t *testing.T) {
		t.Parallel()

		markdown := "# Real Heading\n\n```bash\n# This is a comment\necho hello\n```\n\n## Another Real Heading\n\nText."

		docs := dbdocs.NormalizeMarkdown(markdown, "")

		require.Len(t, docs, 2)
		assert.Equal(t, "Real Heading", docs[0].SectionPath)
		assert.Equal(t, "# This is a comment\necho hello", docs[0].Body)
		assert.Equal(t, "Real Heading > Another Real Heading", docs[1].SectionPath)
	})

	t.Run("uses front matter title", func(t *testing.T) {
		t.Parallel()

		markdown := "---\ntitle: \"Aggregation Pipeline\"\nweight: 3\n---\n\nStages transform documents.\n\n## $match\n\nFilters."

		docs := dbdocs.NormalizeMarkdown(markdown, "aggregation")

		require.Len(t, docs, 2)
		assert.Equal(t, "Aggregation Pipeline", docs[0].Title)
		assert.Equal(t, "Aggregation Pipeline", docs[0].SectionPath)
		assert.Equal(t, "Stages transform documents.", docs[0].Body)
		assert.Equal(t, "$match", docs[1].SectionPath)
	})

	t.Run("falls back to given title", func(t *testing.T) {
		t.Parallel()

		docs := dbdocs.NormalizeMarkdown("Just text.\n\nMore text.", "config reference")

		require.Len(t, docs, 1)
		assert.Equal(t, "config reference", docs[0].Title)
		assert.Equal(t, "config reference", docs[0].SectionPath)
		assert.Equal(t, "Just text.\n\nMore text.", docs[0].Body)
	})

	t.Run("skips sections without body", func(t *testing.T) {
		t.Parallel()

		docs := dbdocs.NormalizeMarkdown("# Title\n\n## Empty\n\n## Full\n\nContent.", "")

		require.Len(t, docs, 1)
		assert.Equal(t, "Title > Full", docs[0].SectionPath)
	})

	t.Run("suffixes repeated section paths", func(t *testing.T) {
		t.Parallel()

		docs := dbdocs.NormalizeMarkdown("# T\n\n## Notes\n\nOne.\n\n## Notes\n\nTwo.", "")

		require.Len(t, docs, 2)
		assert.Equal(t, "T > Notes", docs[0].SectionPath)
		assert.Equal(t, "T > Notes (2)", docs[1].SectionPath)
	})

	t.Run("returns nothing for empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, dbdocs.NormalizeMarkdown("", "x"))
	})
}

func TestStripMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("removes inline markup", func(t *testing.T) {
		t.Parallel()

		got := dbdocs.StripMarkdown("Use **bold** and *em* with [a link](https://x) and ![img](i.png).")

		assert.Equal(t, "Use bold and em with a link and .", got)
	})

	t.Run("keeps code spans and identifiers intact", func(t *testing.T) {
		t.Parallel()

		got := dbdocs.StripMarkdown("Set `max_connections` to 100; SELECT * FROM t WHERE a * b.")

		assert.Equal(t, "Set max_connections to 100; SELECT * FROM t WHERE a * b.", got)
	})

	t.Run("drops list and quote markers", func(t *testing.T) {
		t.Parallel()

		got := dbdocs.StripMarkdown("- one\n- two\n\n1. first\n\n> quoted")

		assert.Equal(t, "one\ntwo\n\nfirst\n\nquoted", got)
	})

	t.Run("flattens tables", func(t *testing.T) {
		t.Parallel()

		got := dbdocs.StripMarkdown("| Name | Type |\n|------|------|\n| id | int |")

		assert.Equal(t, "Name  Type\n\nid  int", got)
	})

	t.Run("unescapes entities and backslashes", func(t *testing.T) {
		t.Parallel()

		got := dbdocs.StripMarkdown(`a &lt; b and 3 \* 4`)

		assert.Equal(t, "a < b and 3 * 4", got)
	})
}

func TestPathSet_Unique(t *testing.T) {
	t.Parallel()

	paths := dbdocs.PathSet{}

	assert.Equal(t, "A", paths.Unique("A"))
	assert.Equal(t, "A (2)", paths.Unique("A"))
	assert.Equal(t, "B", paths.Unique("B"))
	assert.Equal(t, "A (3)", paths.Unique("A"))
}

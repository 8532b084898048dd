package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/514-labs/dbdocs"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	q := dbdocs.SearchQuery{
		DB:      c.DB,
		Version: c.Version,
		Text:    strings.Join(c.Query, " "),
		Limit:   c.Limit,
	}
	results, err := deps.Installer.Search(deps.Ctx, q)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		if dbdocs.ErrorCode(err) == dbdocs.ENOTINSTALLED {
			fmt.Fprintf(deps.Stderr, "Hint: Run 'dbdocs install %s %s' first\n", c.DB, c.Version)
		}
		return err
	}

	if c.JSON {
		if results == nil {
			results = []dbdocs.SearchResult{}
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No results for %q in %s@%s\n", q.Text, c.DB, c.Version)
		return nil
	}

	st := newStyles(deps.Stdout)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(deps.Stdout)
		}
		fmt.Fprintf(deps.Stdout, "%d. %s %s\n", i+1, st.title.Render(r.Title), st.dim.Render(fmt.Sprintf("(%.2f)", r.Score)))
		if r.Section != "" && r.Section != r.Title {
			fmt.Fprintf(deps.Stdout, "   %s\n", r.Section)
		}
		fmt.Fprintf(deps.Stdout, "   %s\n", st.dim.Render(r.SourceURL))
		if r.Snippet != "" {
			fmt.Fprintf(deps.Stdout, "   %s\n", r.Snippet)
		}
		fmt.Fprintf(deps.Stdout, "   id: %s\n", r.DocID)
	}
	return nil
}

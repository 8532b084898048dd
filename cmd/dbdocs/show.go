package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/514-labs/dbdocs"
)

// Run executes the show command. With a document id it prints that
// document; otherwise it prints the pack's manifest and index summary.
func (c *ShowCmd) Run(deps *Dependencies) error {
	if c.DocID == "" {
		return c.showPack(deps)
	}

	doc, err := deps.Installer.Show(c.DB, c.Version, c.DocID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	st := newStyles(deps.Stdout)
	fmt.Fprintln(deps.Stdout, st.title.Render(doc.Title))
	fmt.Fprintln(deps.Stdout, st.dim.Render(doc.SectionPath))
	fmt.Fprintln(deps.Stdout, st.dim.Render(doc.SourceURL))
	fmt.Fprintln(deps.Stdout)
	fmt.Fprintln(deps.Stdout, doc.Body)
	return nil
}

func (c *ShowCmd) showPack(deps *Dependencies) error {
	m, err := deps.Installer.Lookup(c.DB, c.Version)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	rows := [][]string{
		{"Source", string(m.Source.Kind) + " " + m.Source.BaseURL},
		{"Downloaded", m.Source.DownloadedAt.Local().Format(time.DateTime)},
		{"License", m.License.Name},
		{"Documents", fmt.Sprint(m.DocCount)},
		{"Size", FormatBytes(m.ByteSize)},
		{"Doc IDs", m.DocIDScheme},
	}

	if deps.Stats != nil {
		facets, err := deps.Stats.Facets(deps.Ctx, deps.Store.IndexDir(c.DB, c.Version))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "warning: %s\n", dbdocs.ErrorMessage(err))
		} else {
			rows = append(rows, []string{"Indexed", fmt.Sprint(facets.Total)})
			for _, v := range sortedKeys(facets.Versions) {
				rows = append(rows, []string{"  version " + v, fmt.Sprint(facets.Versions[v])})
			}
		}
	}

	writeTable(deps.Stdout, []string{m.DB + "@" + m.Version, ""}, rows)
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

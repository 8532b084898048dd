package main

import (
	"fmt"

	"github.com/514-labs/dbdocs"
)

// Run executes the available command.
func (c *AvailableCmd) Run(deps *Dependencies) error {
	packs := deps.Catalog.List()
	if len(packs) == 0 {
		fmt.Fprintln(deps.Stdout, "The catalog is empty.")
		return nil
	}

	rows := make([][]string, 0, len(packs))
	for _, p := range packs {
		status, err := deps.Store.Status(p.DB, p.Version)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
			return err
		}
		rows = append(rows, []string{p.DB, p.Version, string(p.SourceKind), p.LicenseName, string(status)})
	}
	writeTable(deps.Stdout, []string{"DB", "VERSION", "SOURCE", "LICENSE", "STATUS"}, rows)
	return nil
}

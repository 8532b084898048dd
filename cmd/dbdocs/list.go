package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/514-labs/dbdocs"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	manifests, err := deps.Installer.List(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		return err
	}

	if len(manifests) == 0 {
		fmt.Fprintln(deps.Stdout, "No packs installed. Use 'dbdocs install' to add one.")
		return nil
	}

	rows := make([][]string, 0, len(manifests))
	for _, m := range manifests {
		rows = append(rows, []string{
			m.DB,
			m.Version,
			strconv.Itoa(m.DocCount),
			FormatBytes(m.ByteSize),
			m.Source.DownloadedAt.Local().Format(time.DateTime),
		})
	}
	writeTable(deps.Stdout, []string{"DB", "VERSION", "DOCS", "SIZE", "DOWNLOADED"}, rows)
	return nil
}

package main

import (
	"fmt"

	"github.com/514-labs/dbdocs"
)

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	if err := deps.Installer.Remove(deps.Ctx, c.DB, c.Version); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Removed %s@%s\n", c.DB, c.Version)
	return nil
}

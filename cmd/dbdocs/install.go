package main

import (
	"fmt"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/install"
)

// Run executes the install command.
func (c *InstallCmd) Run(deps *Dependencies) error {
	pack, ok := deps.Catalog.Lookup(c.DB, c.Version)
	if !ok {
		fmt.Fprintf(deps.Stderr, "error: no pack %s@%s in the catalog. Use 'dbdocs available' to see known packs.\n", c.DB, c.Version)
		return dbdocs.Errorf(dbdocs.ENOTFOUND, "pack %s@%s not in catalog", c.DB, c.Version)
	}

	fmt.Fprintf(deps.Stdout, "Installing %s from %s\n", pack, pack.SourceURL)
	m, err := deps.Installer.Install(deps.Ctx, pack, install.Options{
		Force:         c.Force,
		KeepSource:    c.KeepSource,
		AcceptLicense: c.AcceptLicense,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dbdocs.ErrorMessage(err))
		switch dbdocs.ErrorCode(err) {
		case dbdocs.EINSTALLED:
			fmt.Fprintln(deps.Stderr, "Hint: Use --force to reinstall")
		case dbdocs.EINPROGRESS:
			fmt.Fprintln(deps.Stderr, "Hint: Wait for the other install, or use --force if it crashed")
		}
		return err
	}

	fmt.Fprintf(deps.Stdout, "Installed %s: %d documents (%s)\n", pack, m.DocCount, FormatBytes(m.ByteSize))
	return nil
}

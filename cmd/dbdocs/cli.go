package main

import (
	"context"
	"io"

	"github.com/514-labs/dbdocs"
	"github.com/514-labs/dbdocs/bleve"
	"github.com/514-labs/dbdocs/install"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Catalog   dbdocs.Catalog
	Store     dbdocs.PackStore
	Installer *install.Installer
	Stats     IndexStats
}

// IndexStats summarizes an installed index.
type IndexStats interface {
	Facets(ctx context.Context, indexDir string) (*bleve.Facets, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Available AvailableCmd `cmd:"" help:"List packs in the catalog"`
	Install   InstallCmd   `cmd:"" help:"Download and index a documentation pack"`
	Remove    RemoveCmd    `cmd:"" help:"Delete an installed pack"`
	List      ListCmd      `cmd:"" help:"List installed packs"`
	Search    SearchCmd    `cmd:"" help:"Search an installed pack"`
	Show      ShowCmd      `cmd:"" help:"Show a document or a pack summary"`
}

// AvailableCmd is the "available" subcommand.
type AvailableCmd struct{}

// InstallCmd is the "install" subcommand.
type InstallCmd struct {
	DB            string `arg:"" help:"Database name, e.g. postgres"`
	Version       string `arg:"" help:"Documentation version, e.g. 16"`
	Force         bool   `short:"f" help:"Replace an installed pack or an interrupted install"`
	KeepSource    bool   `help:"Keep the downloaded source next to the pack"`
	AcceptLicense bool   `help:"Accept the documentation license without prompting"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	DB      string `arg:"" help:"Database name"`
	Version string `arg:"" help:"Documentation version"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	DB      string   `arg:"" help:"Database name"`
	Version string   `arg:"" help:"Documentation version"`
	Query   []string `arg:"" help:"Search terms"`
	Limit   int      `short:"n" default:"10" help:"Maximum number of results"`
	JSON    bool     `name:"json" help:"Print results as JSON"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	DB      string `arg:"" help:"Database name"`
	Version string `arg:"" help:"Documentation version"`
	DocID   string `arg:"" optional:"" help:"Document id from search results"`
	JSON    bool   `name:"json" help:"Print as JSON"`
}

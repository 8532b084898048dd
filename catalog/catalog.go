// Package catalog provides the static registry of known documentation
// packs. The built-in registry is embedded at build time and may be
// extended or overridden by a user YAML file with the same shape.
package catalog

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/514-labs/dbdocs"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Ensure Catalog implements dbdocs.Catalog at compile time.
var _ dbdocs.Catalog = (*Catalog)(nil)

type file struct {
	Packs []dbdocs.DocPack `yaml:"packs"`
}

type key struct {
	db, version string
}

// Catalog is an immutable set of packs keyed by db and version.
type Catalog struct {
	packs map[key]dbdocs.DocPack
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Load returns the built-in catalog merged with the packs in the YAML
// file at overridePath. Override entries replace built-in entries with the
// same db and version. An empty path returns the built-in catalog.
func Load(overridePath string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if overridePath == "" {
		return c, nil
	}

	data, err := os.ReadFile(overridePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, dbdocs.Errorf(dbdocs.ENOTFOUND, "catalog file %s not found", overridePath)
	} else if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "read catalog file %s", overridePath)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return c.Merge(override), nil
}

// Parse builds a catalog from YAML. Every pack must be valid and appear
// once. A missing version_slug is derived from the version.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINVALID, "parse catalog")
	}

	c := &Catalog{packs: make(map[key]dbdocs.DocPack, len(f.Packs))}
	for i := range f.Packs {
		p := f.Packs[i]
		if err := p.Validate(); err != nil {
			return nil, dbdocs.WrapErrorf(err, dbdocs.EINVALID, "catalog entry %d", i+1)
		}
		if p.VersionSlug == "" {
			p.VersionSlug = dbdocs.SlugifyVersion(p.Version)
		}
		k := key{p.DB, p.Version}
		if _, ok := c.packs[k]; ok {
			return nil, dbdocs.Errorf(dbdocs.EINVALID, "catalog lists %s more than once", p.String())
		}
		c.packs[k] = p
	}
	return c, nil
}

// Merge returns a new catalog holding the packs of c and other. Packs in
// other win.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{packs: make(map[key]dbdocs.DocPack, len(c.packs)+len(other.packs))}
	for k, p := range c.packs {
		merged.packs[k] = p
	}
	for k, p := range other.packs {
		merged.packs[k] = p
	}
	return merged
}

// Lookup returns a copy of the pack for db and version.
func (c *Catalog) Lookup(db, version string) (*dbdocs.DocPack, bool) {
	p, ok := c.packs[key{db, version}]
	if !ok {
		return nil, false
	}
	return &p, true
}

// List returns copies of all packs ordered by db, then version.
func (c *Catalog) List() []*dbdocs.DocPack {
	out := make([]*dbdocs.DocPack, 0, len(c.packs))
	for _, p := range c.packs {
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DB != out[j].DB {
			return out[i].DB < out[j].DB
		}
		return out[i].Version < out[j].Version
	})
	return out
}

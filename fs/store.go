// Package fs stores installed packs on the local filesystem.
//
// Layout, relative to the store root:
//
//	{db}/{version}/manifest.json
//	{db}/{version}/.installing
//	{db}/{version}/content/{doc_id}.json
//	{db}/{version}/index/
//	{db}/{version}/source/
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/514-labs/dbdocs"
	"golang.org/x/sync/errgroup"
)

// File and directory names inside a pack root.
const (
	ManifestFile = "manifest.json"
	MarkerFile   = ".installing"
	ContentDir   = "content"
	IndexDir     = "index"
	SourceDir    = "source"
)

// DefaultWriteConcurrency bounds parallel chunk file writes.
const DefaultWriteConcurrency = 8

// Ensure Store implements dbdocs.PackStore at compile time.
var _ dbdocs.PackStore = (*Store)(nil)

// Store implements dbdocs.PackStore under a root directory.
type Store struct {
	root   string
	Logger *slog.Logger

	// WriteConcurrency bounds parallel chunk writes. Zero means
	// DefaultWriteConcurrency.
	WriteConcurrency int
}

// NewStore creates a Store rooted at root. The directory is created lazily.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) PackDir(db, version string) string {
	return filepath.Join(s.root, db, version)
}

func (s *Store) ContentDir(db, version string) string {
	return filepath.Join(s.PackDir(db, version), ContentDir)
}

func (s *Store) IndexDir(db, version string) string {
	return filepath.Join(s.PackDir(db, version), IndexDir)
}

func (s *Store) SourceDir(db, version string) string {
	return filepath.Join(s.PackDir(db, version), SourceDir)
}

func (s *Store) manifestPath(db, version string) string {
	return filepath.Join(s.PackDir(db, version), ManifestFile)
}

func (s *Store) markerPath(db, version string) string {
	return filepath.Join(s.PackDir(db, version), MarkerFile)
}

// Status reports whether a pack is installed, being installed, left behind
// by a crashed install, or absent. A marker with a live holder reports
// installing even when a manifest exists, since the holder may be
// replacing or removing the pack.
func (s *Store) Status(db, version string) (dbdocs.PackStatus, error) {
	if err := validateCoords(db, version); err != nil {
		return "", err
	}
	marker := exists(s.markerPath(db, version))
	if marker {
		held, err := lockHeld(s.markerPath(db, version))
		if err != nil {
			return "", err
		}
		if held {
			return dbdocs.PackInstalling, nil
		}
	}
	if exists(s.manifestPath(db, version)) {
		return dbdocs.PackInstalled, nil
	}
	if marker {
		return dbdocs.PackStale, nil
	}
	return dbdocs.PackAbsent, nil
}

// WriteChunks writes one JSON file per chunk with bounded parallelism.
func (s *Store) WriteChunks(ctx context.Context, db, version string, chunks []*dbdocs.DocChunk) error {
	dir := s.ContentDir(db, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "create content dir for %s@%s", db, version)
	}

	limit := s.WriteConcurrency
	if limit <= 0 {
		limit = DefaultWriteConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}
			if !validName(c.DocID) {
				return dbdocs.Errorf(dbdocs.EINVALID, "chunk id %q is not a valid file name", c.DocID)
			}
			data, err := json.Marshal(c)
			if err != nil {
				return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "encode chunk %s", c.DocID)
			}
			if err := os.WriteFile(filepath.Join(dir, c.DocID+".json"), data, 0o644); err != nil {
				return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "write chunk %s", c.DocID)
			}
			return nil
		})
	}
	return g.Wait()
}

// ReadChunk loads one chunk by id.
func (s *Store) ReadChunk(db, version, docID string) (*dbdocs.DocChunk, error) {
	if err := validateCoords(db, version); err != nil {
		return nil, err
	}
	if !validName(docID) {
		return nil, dbdocs.Errorf(dbdocs.ENOTFOUND, "document %q not found in %s@%s", docID, db, version)
	}
	return readChunk(filepath.Join(s.ContentDir(db, version), docID+".json"), db, version, docID)
}

func readChunk(path, db, version, docID string) (*dbdocs.DocChunk, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, dbdocs.Errorf(dbdocs.ENOTFOUND, "document %q not found in %s@%s", docID, db, version)
	} else if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "read document %s", docID)
	}
	var c dbdocs.DocChunk
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "decode document %s", docID)
	}
	return &c, nil
}

// ReadChunks loads every chunk of a pack ordered by id.
func (s *Store) ReadChunks(ctx context.Context, db, version string) ([]*dbdocs.DocChunk, error) {
	if err := validateCoords(db, version); err != nil {
		return nil, err
	}
	dir := s.ContentDir(db, version)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "list content of %s@%s", db, version)
	}

	chunks := make([]*dbdocs.DocChunk, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		c, err := readChunk(filepath.Join(dir, name), db, version, strings.TrimSuffix(name, ".json"))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// WriteManifest writes the manifest to a temporary file in the pack root
// and renames it into place.
func (s *Store) WriteManifest(m *dbdocs.DocManifest) error {
	if err := validateCoords(m.DB, m.Version); err != nil {
		return err
	}
	dir := s.PackDir(m.DB, m.Version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "create pack dir for %s@%s", m.DB, m.Version)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "encode manifest for %s@%s", m.DB, m.Version)
	}

	tmp, err := os.CreateTemp(dir, ManifestFile+".*.tmp")
	if err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "create manifest for %s@%s", m.DB, m.Version)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "write manifest for %s@%s", m.DB, m.Version)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "sync manifest for %s@%s", m.DB, m.Version)
	}
	if err := tmp.Close(); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "close manifest for %s@%s", m.DB, m.Version)
	}
	if err := os.Rename(tmp.Name(), s.manifestPath(m.DB, m.Version)); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "commit manifest for %s@%s", m.DB, m.Version)
	}
	return nil
}

// ReadManifest loads a pack's manifest.
func (s *Store) ReadManifest(db, version string) (*dbdocs.DocManifest, error) {
	if err := validateCoords(db, version); err != nil {
		return nil, err
	}
	return readManifest(s.manifestPath(db, version), db, version)
}

func readManifest(path, db, version string) (*dbdocs.DocManifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, dbdocs.Errorf(dbdocs.ENOTINSTALLED, "%s@%s is not installed", db, version)
	} else if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EMANIFEST, "read manifest of %s@%s", db, version)
	}
	var m dbdocs.DocManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EMANIFEST, "decode manifest of %s@%s", db, version)
	}
	if m.DB == "" || m.Version == "" {
		return nil, dbdocs.Errorf(dbdocs.EMANIFEST, "manifest of %s@%s lacks pack coordinates", db, version)
	}
	return &m, nil
}

// ListManifests returns the manifests found at {db}/{version}/manifest.json
// ordered by db, then version. Unreadable manifests are logged and skipped.
func (s *Store) ListManifests(ctx context.Context) ([]*dbdocs.DocManifest, error) {
	var manifests []*dbdocs.DocManifest

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		depth := 0
		if rel != "." {
			depth = len(strings.Split(rel, string(filepath.Separator)))
		}

		if d.IsDir() {
			if depth >= 3 {
				return fs.SkipDir
			}
			return nil
		}
		if depth != 3 || d.Name() != ManifestFile {
			return nil
		}

		parts := strings.Split(rel, string(filepath.Separator))
		m, err := readManifest(path, parts[0], parts[1])
		if err != nil {
			s.logger().Warn("skipping unreadable manifest", "path", path, "err", err)
			return nil
		}
		manifests = append(manifests, m)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "list packs under %s", s.root)
	}

	sort.Slice(manifests, func(i, j int) bool {
		if manifests[i].DB != manifests[j].DB {
			return manifests[i].DB < manifests[j].DB
		}
		return manifests[i].Version < manifests[j].Version
	})
	return manifests, nil
}

// RemovePack deletes the pack root. The db directory is removed too once
// it holds no other versions.
func (s *Store) RemovePack(db, version string) error {
	if err := validateCoords(db, version); err != nil {
		return err
	}
	if err := os.RemoveAll(s.PackDir(db, version)); err != nil {
		return dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "remove %s@%s", db, version)
	}
	_ = os.Remove(filepath.Join(s.root, db))
	return nil
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// validateCoords rejects db and version values that are not a single path
// element.
func validateCoords(db, version string) error {
	if !validName(db) {
		return dbdocs.Errorf(dbdocs.EINVALID, "invalid db name %q", db)
	}
	if !validName(version) {
		return dbdocs.Errorf(dbdocs.EINVALID, "invalid version %q", version)
	}
	return nil
}

func validName(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package install orchestrates pack installation and removal on top of a
// pack store, source fetchers and an indexer.
package install

import (
	"context"
	"log/slog"
	"time"

	"github.com/514-labs/dbdocs"
)

// Options control one install.
type Options struct {
	// Force replaces an installed pack or a marker left by a crash.
	Force bool

	// KeepSource mirrors the raw upstream source into the pack's source
	// directory.
	KeepSource bool

	// AcceptLicense accepts the pack's license without prompting.
	AcceptLicense bool
}

// Installer installs, removes and queries packs.
type Installer struct {
	Store    dbdocs.PackStore
	Fetchers dbdocs.SourceFetchers
	Indexer  dbdocs.Indexer
	Searcher dbdocs.Searcher
	Prompter dbdocs.LicensePrompter
	Logger   *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Install acquires, chunks, persists and indexes a pack, then writes its
// manifest. The manifest is written last, so a pack without one is never
// reported as installed.
//
// A pack whose marker has a live holder yields EINPROGRESS, even with
// opts.Force and even if it is installed; nothing is touched. An installed
// pack yields EINSTALLED unless opts.Force is set, in which case the old
// pack root is deleted first. A marker nobody holds also yields
// EINPROGRESS unless opts.Force clears it. A
// declined license yields ELICENSE before any download. Any failure after
// the lock is taken deletes the pack root. The lock is always released.
func (in *Installer) Install(ctx context.Context, pack *dbdocs.DocPack, opts Options) (*dbdocs.DocManifest, error) {
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	logger := in.logger().With("pack", pack.String())

	status, err := in.Store.Status(pack.DB, pack.Version)
	if err != nil {
		return nil, err
	}
	switch status {
	case dbdocs.PackInstalled:
		if !opts.Force {
			return nil, dbdocs.Errorf(dbdocs.EINSTALLED, "%s is already installed", pack)
		}
	case dbdocs.PackInstalling:
		return nil, dbdocs.Errorf(dbdocs.EINPROGRESS, "%s is being installed by another process", pack)
	case dbdocs.PackStale:
		if !opts.Force {
			return nil, dbdocs.Errorf(dbdocs.EINPROGRESS, "%s has an interrupted install; use force to replace it", pack)
		}
	}
	if opts.Force && status != dbdocs.PackAbsent {
		logger.Info("removing existing pack", "status", string(status))
		if err := in.Store.RemovePack(pack.DB, pack.Version); err != nil {
			return nil, err
		}
	}

	lock, err := in.Store.AcquireLock(pack.DB, pack.Version)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release install lock", "err", err)
		}
	}()

	m, err := in.install(ctx, pack, opts, logger)
	if err != nil {
		logger.Warn("install failed, rolling back", "err", err)
		if rerr := in.Store.RemovePack(pack.DB, pack.Version); rerr != nil {
			logger.Error("rollback failed", "err", rerr)
		}
		return nil, err
	}
	return m, nil
}

// install runs the pipeline while the lock is held.
func (in *Installer) install(ctx context.Context, pack *dbdocs.DocPack, opts Options, logger *slog.Logger) (*dbdocs.DocManifest, error) {
	begin := in.now()

	acceptedAt, err := in.acceptLicense(ctx, pack, opts)
	if err != nil {
		return nil, err
	}

	fetcher, err := in.Fetchers.For(pack)
	if err != nil {
		return nil, err
	}
	var cacheDir string
	if opts.KeepSource {
		cacheDir = in.Store.SourceDir(pack.DB, pack.Version)
	}

	logger.Info("fetching source", "kind", string(pack.SourceKind), "url", pack.SourceURL)
	downloadedAt := in.now()
	docs, err := fetcher.FetchSource(ctx, pack, cacheDir)
	if err != nil {
		return nil, err
	}

	slug := pack.VersionSlug
	if slug == "" {
		slug = dbdocs.SlugifyVersion(pack.Version)
	}
	chunks := uniqueChunks(dbdocs.ChunkDocs(pack.DB, slug, docs), logger)
	logger.Info("chunked source", "docs", len(docs), "chunks", len(chunks))

	if err := in.Store.WriteChunks(ctx, pack.DB, pack.Version, chunks); err != nil {
		return nil, err
	}
	if err := in.Indexer.Build(ctx, in.Store.IndexDir(pack.DB, pack.Version), pack, chunks); err != nil {
		return nil, err
	}

	var byteSize int64
	for _, c := range chunks {
		byteSize += int64(len(c.Body))
	}
	baseURL := pack.CanonicalBaseURL
	if baseURL == "" {
		baseURL = pack.SourceURL
	}
	m := &dbdocs.DocManifest{
		DB:          pack.DB,
		Version:     pack.Version,
		VersionSlug: slug,
		Source: dbdocs.ManifestSource{
			Kind:         pack.SourceKind,
			BaseURL:      baseURL,
			DownloadedAt: downloadedAt,
		},
		License: dbdocs.ManifestLicense{
			Name:       pack.LicenseName,
			URL:        pack.LicenseURL,
			AcceptedAt: acceptedAt,
		},
		DocCount:     len(chunks),
		ByteSize:     byteSize,
		DocIDScheme:  dbdocs.DocIDScheme,
		IndexVersion: dbdocs.IndexVersion,
	}
	if err := in.Store.WriteManifest(m); err != nil {
		return nil, err
	}

	logger.Info("pack installed",
		"doc_count", m.DocCount,
		"byte_size", m.ByteSize,
		"duration", in.now().Sub(begin),
	)
	return m, nil
}

// acceptLicense returns the acceptance time or ELICENSE.
func (in *Installer) acceptLicense(ctx context.Context, pack *dbdocs.DocPack, opts Options) (time.Time, error) {
	if opts.AcceptLicense {
		return in.now(), nil
	}
	if in.Prompter == nil {
		return time.Time{}, dbdocs.Errorf(dbdocs.ELICENSE, "%s: license %s must be accepted", pack, pack.LicenseName)
	}
	ok, err := in.Prompter.AcceptLicense(ctx, pack)
	if dbdocs.ErrorCode(err) == dbdocs.ELICENSE {
		return time.Time{}, err
	} else if err != nil {
		return time.Time{}, dbdocs.WrapErrorf(err, dbdocs.ELICENSE, "%s: license prompt", pack)
	}
	if !ok {
		return time.Time{}, dbdocs.Errorf(dbdocs.ELICENSE, "%s: license %s was not accepted", pack, pack.LicenseName)
	}
	return in.now(), nil
}

// uniqueChunks drops chunks whose id was already produced.
func uniqueChunks(chunks []*dbdocs.DocChunk, logger *slog.Logger) []*dbdocs.DocChunk {
	seen := make(map[string]struct{}, len(chunks))
	out := chunks[:0]
	for _, c := range chunks {
		if _, ok := seen[c.DocID]; ok {
			logger.Warn("dropping duplicate chunk", "doc_id", c.DocID, "url", c.SourceURL, "section", c.SectionPath)
			continue
		}
		seen[c.DocID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Remove deletes an installed pack, or clears an interrupted install.
// Returns ENOTINSTALLED if the pack is absent and EINPROGRESS while an
// install holds the lock.
func (in *Installer) Remove(ctx context.Context, db, version string) error {
	status, err := in.Store.Status(db, version)
	if err != nil {
		return err
	}
	switch status {
	case dbdocs.PackAbsent:
		return dbdocs.Errorf(dbdocs.ENOTINSTALLED, "%s@%s is not installed", db, version)
	case dbdocs.PackInstalling:
		return dbdocs.Errorf(dbdocs.EINPROGRESS, "%s@%s is being installed", db, version)
	case dbdocs.PackStale:
		in.logger().Info("clearing interrupted install", "pack", db+"@"+version)
		return in.Store.RemovePack(db, version)
	}

	lock, err := in.Store.AcquireLock(db, version)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	if err := in.Store.RemovePack(db, version); err != nil {
		return err
	}
	in.logger().Info("pack removed", "pack", db+"@"+version)
	return nil
}

// Lookup returns the manifest of an installed pack.
func (in *Installer) Lookup(db, version string) (*dbdocs.DocManifest, error) {
	return in.Store.ReadManifest(db, version)
}

// List returns the manifests of all installed packs.
func (in *Installer) List(ctx context.Context) ([]*dbdocs.DocManifest, error) {
	return in.Store.ListManifests(ctx)
}

// Search queries an installed pack.
func (in *Installer) Search(ctx context.Context, q dbdocs.SearchQuery) ([]dbdocs.SearchResult, error) {
	if _, err := in.Store.ReadManifest(q.DB, q.Version); err != nil {
		return nil, err
	}
	return in.Searcher.Search(ctx, in.Store.IndexDir(q.DB, q.Version), q)
}

// Show returns one document of an installed pack.
func (in *Installer) Show(db, version, docID string) (*dbdocs.DocChunk, error) {
	if _, err := in.Store.ReadManifest(db, version); err != nil {
		return nil, err
	}
	return in.Store.ReadChunk(db, version, docID)
}

func (in *Installer) now() time.Time {
	if in.Now != nil {
		return in.Now()
	}
	return time.Now()
}

func (in *Installer) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.New(slog.DiscardHandler)
}

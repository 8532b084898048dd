package dbdocs

import (
	"context"
	"time"
)

// SourceKind identifies how a pack's upstream documentation is acquired.
type SourceKind string

// Supported source kinds.
const (
	SourceHTMLCrawl SourceKind = "html_crawl"
	SourceGzipFile  SourceKind = "gzip_file"
	SourceTarGz     SourceKind = "tar_gz"
)

// DocPack describes a documentation pack known to the catalog.
// Packs are immutable configuration; nothing in the install pipeline
// mutates them.
type DocPack struct {
	DB               string     `json:"db" yaml:"db"`
	Version          string     `json:"version" yaml:"version"`
	VersionSlug      string     `json:"version_slug" yaml:"version_slug"`
	SourceKind       SourceKind `json:"source_kind" yaml:"source_kind"`
	SourceURL        string     `json:"source_url" yaml:"source_url"`
	CanonicalBaseURL string     `json:"canonical_base_url" yaml:"canonical_base_url"`
	LicenseName      string     `json:"license_name" yaml:"license_name"`
	LicenseURL       string     `json:"license_url" yaml:"license_url"`
}

// String returns the pack coordinates, e.g. "postgres@16".
func (p *DocPack) String() string {
	return p.DB + "@" + p.Version
}

// Validate returns an error if the pack contains invalid fields.
func (p *DocPack) Validate() error {
	if p.DB == "" {
		return Errorf(EINVALID, "pack db required")
	}
	if p.Version == "" {
		return Errorf(EINVALID, "pack %s: version required", p.DB)
	}
	if p.SourceURL == "" {
		return Errorf(EINVALID, "pack %s: source URL required", p)
	}
	switch p.SourceKind {
	case SourceHTMLCrawl, SourceGzipFile, SourceTarGz:
	default:
		return Errorf(EINVALID, "pack %s: unknown source kind %q", p, p.SourceKind)
	}
	return nil
}

// Catalog is the static registry of known packs.
type Catalog interface {
	// Lookup returns the pack for db and version.
	// The bool result is false if the catalog has no such pack.
	Lookup(db, version string) (*DocPack, bool)

	// List returns all packs ordered by db, then version.
	List() []*DocPack
}

// DocIDScheme describes how document ids are derived. It is recorded in
// every manifest so readers can detect incompatible packs.
const DocIDScheme = "blake3(canonical_url + section_path)"

// IndexVersion is the on-disk index format written by this build.
const IndexVersion = 1

// ManifestSource records where a pack's content came from.
type ManifestSource struct {
	Kind         SourceKind `json:"kind"`
	BaseURL      string     `json:"base_url"`
	DownloadedAt time.Time  `json:"downloaded_at"`
}

// ManifestLicense records the license accepted at install time.
type ManifestLicense struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// DocManifest describes an installed pack. A pack is installed if and
// only if its manifest exists on disk.
//
// DocCount equals the number of persisted chunk files and ByteSize the
// sum of their body lengths.
type DocManifest struct {
	DB           string          `json:"db"`
	Version      string          `json:"version"`
	VersionSlug  string          `json:"version_slug"`
	Source       ManifestSource  `json:"source"`
	License      ManifestLicense `json:"license"`
	DocCount     int             `json:"doc_count"`
	ByteSize     int64           `json:"byte_size"`
	DocIDScheme  string          `json:"doc_id_scheme"`
	IndexVersion int             `json:"index_version"`
}

// PackStatus is the install state of one (db, version) pack.
type PackStatus string

// Pack states. PackStale means a lock marker exists without a manifest and
// no process holds it: a crashed install that needs a forced reinstall.
const (
	PackAbsent     PackStatus = "absent"
	PackInstalling PackStatus = "installing"
	PackStale      PackStatus = "stale"
	PackInstalled  PackStatus = "installed"
)

// InstallLock is held for the duration of one install.
type InstallLock interface {
	// Release removes the lock marker. It is safe to call more than once.
	Release() error
}

// PackStore manages the on-disk layout of installed packs.
type PackStore interface {
	// PackDir returns the root directory of a pack.
	PackDir(db, version string) string

	// ContentDir, IndexDir and SourceDir return the pack's subdirectories.
	ContentDir(db, version string) string
	IndexDir(db, version string) string
	SourceDir(db, version string) string

	// Status reports the install state of a pack.
	Status(db, version string) (PackStatus, error)

	// AcquireLock creates the pack root and its lock marker.
	// Returns EINPROGRESS if a marker already exists.
	AcquireLock(db, version string) (InstallLock, error)

	// WriteChunks persists chunks into the pack's content directory.
	WriteChunks(ctx context.Context, db, version string, chunks []*DocChunk) error

	// ReadChunk loads one chunk by id.
	// Returns ENOTFOUND if the chunk does not exist.
	ReadChunk(db, version, docID string) (*DocChunk, error)

	// ReadChunks loads every chunk of a pack ordered by id.
	ReadChunks(ctx context.Context, db, version string) ([]*DocChunk, error)

	// WriteManifest atomically writes the pack's manifest.
	WriteManifest(m *DocManifest) error

	// ReadManifest loads a pack's manifest.
	// Returns ENOTINSTALLED if missing and EMANIFEST if unreadable.
	ReadManifest(db, version string) (*DocManifest, error)

	// ListManifests returns the manifests of all installed packs.
	ListManifests(ctx context.Context) ([]*DocManifest, error)

	// RemovePack deletes the pack root and everything under it.
	RemovePack(db, version string) error
}

// LicensePrompter asks the user to accept a pack's license.
type LicensePrompter interface {
	// AcceptLicense returns true if the user accepts the license.
	AcceptLicense(ctx context.Context, pack *DocPack) (bool, error)
}

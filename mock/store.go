package mock

import (
	"context"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.PackStore = (*PackStore)(nil)

// PackStore is a mock implementation of dbdocs.PackStore.
type PackStore struct {
	PackDirFn       func(db, version string) string
	ContentDirFn    func(db, version string) string
	IndexDirFn      func(db, version string) string
	SourceDirFn     func(db, version string) string
	StatusFn        func(db, version string) (dbdocs.PackStatus, error)
	AcquireLockFn   func(db, version string) (dbdocs.InstallLock, error)
	WriteChunksFn   func(ctx context.Context, db, version string, chunks []*dbdocs.DocChunk) error
	ReadChunkFn     func(db, version, docID string) (*dbdocs.DocChunk, error)
	ReadChunksFn    func(ctx context.Context, db, version string) ([]*dbdocs.DocChunk, error)
	WriteManifestFn func(m *dbdocs.DocManifest) error
	ReadManifestFn  func(db, version string) (*dbdocs.DocManifest, error)
	ListManifestsFn func(ctx context.Context) ([]*dbdocs.DocManifest, error)
	RemovePackFn    func(db, version string) error
}

func (s *PackStore) PackDir(db, version string) string {
	return s.PackDirFn(db, version)
}

func (s *PackStore) ContentDir(db, version string) string {
	return s.ContentDirFn(db, version)
}

func (s *PackStore) IndexDir(db, version string) string {
	return s.IndexDirFn(db, version)
}

func (s *PackStore) SourceDir(db, version string) string {
	return s.SourceDirFn(db, version)
}

func (s *PackStore) Status(db, version string) (dbdocs.PackStatus, error) {
	return s.StatusFn(db, version)
}

func (s *PackStore) AcquireLock(db, version string) (dbdocs.InstallLock, error) {
	return s.AcquireLockFn(db, version)
}

func (s *PackStore) WriteChunks(ctx context.Context, db, version string, chunks []*dbdocs.DocChunk) error {
	return s.WriteChunksFn(ctx, db, version, chunks)
}

func (s *PackStore) ReadChunk(db, version, docID string) (*dbdocs.DocChunk, error) {
	return s.ReadChunkFn(db, version, docID)
}

func (s *PackStore) ReadChunks(ctx context.Context, db, version string) ([]*dbdocs.DocChunk, error) {
	return s.ReadChunksFn(ctx, db, version)
}

func (s *PackStore) WriteManifest(m *dbdocs.DocManifest) error {
	return s.WriteManifestFn(m)
}

func (s *PackStore) ReadManifest(db, version string) (*dbdocs.DocManifest, error) {
	return s.ReadManifestFn(db, version)
}

func (s *PackStore) ListManifests(ctx context.Context) ([]*dbdocs.DocManifest, error) {
	return s.ListManifestsFn(ctx)
}

func (s *PackStore) RemovePack(db, version string) error {
	return s.RemovePackFn(db, version)
}

var _ dbdocs.InstallLock = (*InstallLock)(nil)

// InstallLock is a mock implementation of dbdocs.InstallLock.
type InstallLock struct {
	ReleaseFn func() error
}

func (l *InstallLock) Release() error {
	return l.ReleaseFn()
}

package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/514-labs/dbdocs"
	"github.com/gofrs/flock"
)

// Ensure Lock implements dbdocs.InstallLock at compile time.
var _ dbdocs.InstallLock = (*Lock)(nil)

// Lock guards one install. It owns the pack's marker file and holds an
// advisory lock on it so other processes can tell a live install from a
// marker left behind by a crash.
type Lock struct {
	path  string
	flock *flock.Flock
	once  sync.Once
	err   error
}

// AcquireLock creates the pack root and its marker file exclusively.
// Returns EINPROGRESS if the marker already exists.
func (s *Store) AcquireLock(db, version string) (dbdocs.InstallLock, error) {
	if err := validateCoords(db, version); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.PackDir(db, version), 0o755); err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "create pack dir for %s@%s", db, version)
	}

	path := s.markerPath(db, version)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, dbdocs.Errorf(dbdocs.EINPROGRESS, "%s@%s is already being installed", db, version)
	} else if err != nil {
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "create install marker for %s@%s", db, version)
	}
	_, werr := fmt.Fprintf(f, "pid=%d\nstarted=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "write install marker for %s@%s", db, version)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil || !ok {
		_ = os.Remove(path)
		if err == nil {
			err = errors.New("marker locked by another process")
		}
		return nil, dbdocs.WrapErrorf(err, dbdocs.EINPROGRESS, "lock install marker for %s@%s", db, version)
	}

	return &Lock{path: path, flock: fl}, nil
}

// Path returns the marker file path.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the marker and drops the advisory lock. Only the first
// call has an effect. A marker already removed, for example together with
// its pack root during rollback, is not an error.
func (l *Lock) Release() error {
	l.once.Do(func() {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.err = dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "remove install marker")
		}
		if err := l.flock.Unlock(); err != nil && l.err == nil {
			l.err = dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "unlock install marker")
		}
	})
	return l.err
}

// lockHeld reports whether some process holds the advisory lock on the
// marker at path. Checking never creates the marker.
func lockHeld(path string) (bool, error) {
	fl := flock.New(path, flock.SetFlag(os.O_RDONLY))
	ok, err := fl.TryLock()
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, dbdocs.WrapErrorf(err, dbdocs.EINTERNAL, "check install marker %s", path)
	}
	if !ok {
		return true, nil
	}
	_ = fl.Unlock()
	return false, nil
}

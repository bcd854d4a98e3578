// Package lockfile guards the local dump working copy against
// concurrent engine instances.
//
// The synchronization protocol tolerates concurrent remote writers, but
// it assumes exclusive access to its own working copy: two engines
// fetching, merging, and moving the checkpoint tag in the same
// directory would corrupt each other's recovery state. The lock is a
// flock on a well-known file next to the dump, outside the working
// tree so it never shows up as an uncommitted change.
package lockfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLockBusy is returned when another process holds the dump lock.
var ErrLockBusy = errors.New("dump is locked by another process")

// Lock is a held exclusive lock on a dump working copy.
type Lock struct {
	fl *flock.Flock
}

// lockPath returns the lock file path for a dump directory:
// a sibling named after the dump with a .lock suffix.
func lockPath(dumpDir string) string {
	dir := strings.TrimRight(dumpDir, string(filepath.Separator))
	return dir + ".lock"
}

// Acquire takes the exclusive lock for the given dump directory without
// blocking. Returns ErrLockBusy if another process holds it.
func Acquire(dumpDir string) (*Lock, error) {
	fl := flock.New(lockPath(dumpDir))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock dump %s: %w", dumpDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLockBusy, fl.Path())
	}

	return &Lock{fl: fl}, nil
}

// Release drops the lock. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release dump lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

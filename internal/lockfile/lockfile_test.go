package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	dumpDir := filepath.Join(t.TempDir(), "dump")
	if err := os.Mkdir(dumpDir, 0755); err != nil {
		t.Fatal(err)
	}

	lock, err := Acquire(dumpDir)
	if err != nil {
		t.Fatalf("Acquire() unexpected error: %v", err)
	}

	if _, err := os.Stat(lock.Path()); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Errorf("Release() unexpected error: %v", err)
	}

	// Reacquirable after release.
	lock, err = Acquire(dumpDir)
	if err != nil {
		t.Fatalf("Acquire() after release unexpected error: %v", err)
	}
	lock.Release()
}

func TestLockPath_OutsideDump(t *testing.T) {
	dumpDir := filepath.Join(t.TempDir(), "dump")

	path := lockPath(dumpDir)
	if strings.HasPrefix(path, dumpDir+string(filepath.Separator)) {
		t.Errorf("lock path %s is inside the dump working tree", path)
	}
	if path != dumpDir+".lock" {
		t.Errorf("lockPath() = %s, want %s", path, dumpDir+".lock")
	}

	// A trailing separator does not change the result.
	if got := lockPath(dumpDir + string(filepath.Separator)); got != path {
		t.Errorf("lockPath() with trailing separator = %s, want %s", got, path)
	}
}

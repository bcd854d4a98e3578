package sync

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kotenev/yokadi/internal/db"
	"github.com/kotenev/yokadi/internal/dump"
	"github.com/kotenev/yokadi/internal/vcs"
)

// recordingReporter captures progress and error messages
type recordingReporter struct {
	progress []string
	errors   []string
}

func (r *recordingReporter) ReportProgress(message string) {
	r.progress = append(r.progress, message)
}

func (r *recordingReporter) ReportError(message string) {
	r.errors = append(r.errors, message)
}

func (r *recordingReporter) hasError(substr string) bool {
	for _, message := range r.errors {
		if strings.Contains(message, substr) {
			return true
		}
	}
	return false
}

func (r *recordingReporter) hasProgress(substr string) bool {
	for _, message := range r.progress {
		if strings.Contains(message, substr) {
			return true
		}
	}
	return false
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "yokadi.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.InitSchema(); err != nil {
		t.Fatal(err)
	}
	return database
}

// newTestManager builds an engine over a fake VCS with an initialized
// dump directory and an empty database.
func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeVCS) {
	t.Helper()

	dumpDir := filepath.Join(t.TempDir(), "dump")
	if err := os.Mkdir(dumpDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := dump.WriteVersionFile(dumpDir); err != nil {
		t.Fatal(err)
	}
	if err := dump.CreateDirs(dumpDir); err != nil {
		t.Fatal(err)
	}

	fake := newFakeVCS(dumpDir)
	opts = append([]Option{
		WithDatabase(openTestDB(t)),
		WithLogger(quietLogger()),
	}, opts...)
	return NewManager(fake, opts...), fake
}

func TestInitDumpRepository(t *testing.T) {
	dumpDir := filepath.Join(t.TempDir(), "dump")
	fake := newFakeVCS(dumpDir)
	m := NewManager(fake, WithLogger(quietLogger()))

	if err := m.InitDumpRepository(); err != nil {
		t.Fatalf("InitDumpRepository() unexpected error: %v", err)
	}

	version, err := dump.ReadVersionFile(dumpDir)
	if err != nil {
		t.Fatalf("version marker not written: %v", err)
	}
	if version != dump.FormatVersion {
		t.Errorf("version marker = %d, want %d", version, dump.FormatVersion)
	}
	for _, c := range dump.AllCollections {
		if _, err := os.Stat(c.Dir(dumpDir)); err != nil {
			t.Errorf("collection dir %s not created: %v", c, err)
		}
	}
	if len(fake.commits) != 1 || fake.commits[0] != "Created" {
		t.Errorf("commits = %v, want [Created]", fake.commits)
	}
}

func TestInitDumpRepository_ExistingDirPanics(t *testing.T) {
	dumpDir := t.TempDir()
	m := NewManager(newFakeVCS(dumpDir), WithLogger(quietLogger()))

	defer func() {
		if recover() == nil {
			t.Error("InitDumpRepository() on existing directory did not panic")
		}
	}()
	m.InitDumpRepository()
}

func TestMergeCheckpointLifecycle(t *testing.T) {
	m, fake := newTestManager(t)
	reporter := &recordingReporter{}

	if m.IsMergeInProgress() {
		t.Error("IsMergeInProgress() = true before any merge")
	}

	// A successful pull passes through the checkpoint and removes it.
	if !m.Pull(t.Context(), reporter) {
		t.Fatalf("Pull() = false, errors: %v", reporter.errors)
	}
	if m.IsMergeInProgress() {
		t.Error("IsMergeInProgress() = true after successful pull")
	}
	if !reporter.hasProgress("No remote changes") {
		t.Errorf("progress = %v, want a no-remote-changes notice", reporter.progress)
	}

	// A failed merge leaves the checkpoint in place.
	fake.mergeErr = context.DeadlineExceeded
	reporter = &recordingReporter{}
	if m.Pull(t.Context(), reporter) {
		t.Fatal("Pull() = true with failing merge")
	}
	if !m.IsMergeInProgress() {
		t.Error("IsMergeInProgress() = false after failed merge")
	}
	if !reporter.hasError("Failed to merge remote changes") {
		t.Errorf("errors = %v, want a merge failure notice", reporter.errors)
	}

	// AbortMerge restores the checkpoint and clears the tag.
	if err := m.AbortMerge(); err != nil {
		t.Fatalf("AbortMerge() unexpected error: %v", err)
	}
	if m.IsMergeInProgress() {
		t.Error("IsMergeInProgress() = true after AbortMerge()")
	}
	if len(fake.resets) != 1 || fake.resets[0] != BeforeMergeTag {
		t.Errorf("resets = %v, want [%s]", fake.resets, BeforeMergeTag)
	}
}

func TestAbortMerge_PanicsWithoutCheckpoint(t *testing.T) {
	m, _ := newTestManager(t)

	defer func() {
		if recover() == nil {
			t.Error("AbortMerge() without checkpoint did not panic")
		}
	}()
	m.AbortMerge()
}

func TestPull_DirtyTreePanics(t *testing.T) {
	m, fake := newTestManager(t)
	fake.clean = false

	defer func() {
		if recover() == nil {
			t.Error("Pull() with dirty work tree did not panic")
		}
	}()
	m.Pull(t.Context(), &recordingReporter{})
}

func TestHasChangesToImport_PanicsWithoutCheckpoint(t *testing.T) {
	m, _ := newTestManager(t)

	defer func() {
		if recover() == nil {
			t.Error("HasChangesToImport() without checkpoint did not panic")
		}
	}()
	m.HasChangesToImport()
}

func TestRequireSession(t *testing.T) {
	m := NewManager(newFakeVCS(t.TempDir()), WithLogger(quietLogger()))

	defer func() {
		if recover() == nil {
			t.Error("Dump() without database session did not panic")
		}
	}()
	m.Dump(t.Context())
}

func TestHasChangesToPush(t *testing.T) {
	m, fake := newTestManager(t)

	hasPush, err := m.HasChangesToPush()
	if err != nil {
		t.Fatal(err)
	}
	if hasPush {
		t.Error("HasChangesToPush() = true with no changes")
	}

	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}
	hasPush, err = m.HasChangesToPush()
	if err != nil {
		t.Fatal(err)
	}
	if !hasPush {
		t.Error("HasChangesToPush() = false with pending changes")
	}
}

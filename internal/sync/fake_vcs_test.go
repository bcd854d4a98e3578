package sync

import (
	"context"
	"fmt"

	"github.com/kotenev/yokadi/internal/vcs"
)

// fakeVCS is a scripted in-memory VCS used to drive the engine through
// scenarios that are awkward to stage with real repositories, such as
// repeated not-fast-forward pushes or version mismatches.
type fakeVCS struct {
	workDir string
	tags    map[string]bool

	clean    bool
	upToDate bool

	// fileAtRef maps "ref:path" to content; absent entries fail
	fileAtRef map[string][]byte

	// changes maps a reference to the change set reported against it
	changes map[string]*vcs.ChangeSet

	fetchErr error
	mergeErr error

	// pushErrs is consumed one entry per Push call; once exhausted,
	// pushes succeed and clear the pending change set
	pushErrs  []error
	pushCalls int

	commits   []string
	resets    []string
	remoteRef string
}

func newFakeVCS(workDir string) *fakeVCS {
	return &fakeVCS{
		workDir:   workDir,
		tags:      make(map[string]bool),
		clean:     true,
		upToDate:  true,
		fileAtRef: make(map[string][]byte),
		changes:   make(map[string]*vcs.ChangeSet),
		remoteRef: DefaultRemoteRef,
	}
}

func (f *fakeVCS) Name() vcs.Type  { return vcs.TypeGit }
func (f *fakeVCS) WorkDir() string { return f.workDir }

func (f *fakeVCS) Init() error { return nil }

func (f *fakeVCS) CreateTag(name string) error {
	if f.tags[name] {
		return vcs.ErrTagExists
	}
	f.tags[name] = true
	return nil
}

func (f *fakeVCS) DeleteTag(name string) error {
	if !f.tags[name] {
		return vcs.ErrTagNotFound
	}
	delete(f.tags, name)
	return nil
}

func (f *fakeVCS) HasTag(name string) bool { return f.tags[name] }

func (f *fakeVCS) ResetTo(ref string) error {
	f.resets = append(f.resets, ref)
	return nil
}

func (f *fakeVCS) IsWorkTreeClean() (bool, error) { return f.clean, nil }
func (f *fakeVCS) IsUpToDate() (bool, error)      { return f.upToDate, nil }

func (f *fakeVCS) Fetch(ctx context.Context) error { return f.fetchErr }
func (f *fakeVCS) Merge(ctx context.Context) error { return f.mergeErr }

func (f *fakeVCS) Push(ctx context.Context) error {
	f.pushCalls++
	if len(f.pushErrs) > 0 {
		err := f.pushErrs[0]
		f.pushErrs = f.pushErrs[1:]
		if err != nil {
			return err
		}
	}
	// Successful push: nothing left to publish.
	delete(f.changes, f.remoteRef)
	return nil
}

func (f *fakeVCS) CommitAll(message string) error {
	f.commits = append(f.commits, message)
	f.clean = true
	return nil
}

func (f *fakeVCS) ChangesSince(ref string) (*vcs.ChangeSet, error) {
	if set, ok := f.changes[ref]; ok {
		return set, nil
	}
	return &vcs.ChangeSet{}, nil
}

func (f *fakeVCS) FileAtRef(ref, path string) ([]byte, error) {
	if data, ok := f.fileAtRef[ref+":"+path]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no %s at %s", path, ref)
}

var _ vcs.VCS = (*fakeVCS)(nil)

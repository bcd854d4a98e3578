package sync

import (
	"errors"
	"testing"

	"github.com/kotenev/yokadi/internal/vcs"
)

func TestSync_NothingToDo(t *testing.T) {
	m, fake := newTestManager(t)

	reporter := &recordingReporter{}
	if !m.Sync(t.Context(), reporter) {
		t.Fatalf("Sync() = false, errors: %v", reporter.errors)
	}
	if len(fake.commits) != 0 {
		t.Errorf("commits = %v, want none", fake.commits)
	}
	if fake.pushCalls != 0 {
		t.Errorf("pushCalls = %d, want 0", fake.pushCalls)
	}
}

func TestSync_CommitsLocalChanges(t *testing.T) {
	m, fake := newTestManager(t)
	fake.clean = false
	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}

	reporter := &recordingReporter{}
	if !m.Sync(t.Context(), reporter) {
		t.Fatalf("Sync() = false, errors: %v", reporter.errors)
	}

	if len(fake.commits) != 1 || fake.commits[0] != SyncCommitMessage {
		t.Errorf("commits = %v, want [%s]", fake.commits, SyncCommitMessage)
	}
	if fake.pushCalls != 1 {
		t.Errorf("pushCalls = %d, want 1", fake.pushCalls)
	}
}

func TestSync_RetriesNotFastForward(t *testing.T) {
	m, fake := newTestManager(t, WithMaxPushRetries(3))
	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}
	// Two concurrent pushes land first; the third attempt goes through.
	fake.pushErrs = []error{vcs.ErrNotFastForward, vcs.ErrNotFastForward}

	reporter := &recordingReporter{}
	if !m.Sync(t.Context(), reporter) {
		t.Fatalf("Sync() = false, errors: %v", reporter.errors)
	}

	if fake.pushCalls != 3 {
		t.Errorf("pushCalls = %d, want 3", fake.pushCalls)
	}
	if !reporter.hasProgress("Remote has other changes, need to pull again") {
		t.Errorf("progress = %v, want a re-pull notice", reporter.progress)
	}
}

func TestSync_GivesUpAfterMaxRetries(t *testing.T) {
	m, fake := newTestManager(t, WithMaxPushRetries(1))
	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}
	fake.pushErrs = []error{
		vcs.ErrNotFastForward,
		vcs.ErrNotFastForward,
		vcs.ErrNotFastForward,
	}

	reporter := &recordingReporter{}
	if m.Sync(t.Context(), reporter) {
		t.Fatal("Sync() = true despite the remote never settling")
	}
	if !reporter.hasError("Gave up pushing") {
		t.Errorf("errors = %v, want a give-up notice", reporter.errors)
	}
	// One initial attempt plus one retry.
	if fake.pushCalls != 2 {
		t.Errorf("pushCalls = %d, want 2", fake.pushCalls)
	}
}

func TestSync_NegativeRetryCapMeansNoRetries(t *testing.T) {
	m, fake := newTestManager(t, WithMaxPushRetries(-1))
	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}
	fake.pushErrs = []error{vcs.ErrNotFastForward, vcs.ErrNotFastForward}

	reporter := &recordingReporter{}
	if m.Sync(t.Context(), reporter) {
		t.Fatal("Sync() = true despite rejected push")
	}
	// A bogus cap must not turn into an unbounded loop.
	if fake.pushCalls != 1 {
		t.Errorf("pushCalls = %d, want 1", fake.pushCalls)
	}
	if !reporter.hasError("Gave up pushing") {
		t.Errorf("errors = %v, want a give-up notice", reporter.errors)
	}
}

func TestSync_GenericPushFailureNotRetried(t *testing.T) {
	m, fake := newTestManager(t, WithMaxPushRetries(5))
	fake.changes[DefaultRemoteRef] = &vcs.ChangeSet{Modified: []string{"tasks/t1.json"}}
	fake.pushErrs = []error{errors.New("remote hung up unexpectedly")}

	reporter := &recordingReporter{}
	if m.Sync(t.Context(), reporter) {
		t.Fatal("Sync() = true with failing push")
	}
	if fake.pushCalls != 1 {
		t.Errorf("pushCalls = %d, want 1", fake.pushCalls)
	}
	if !reporter.hasError("Failed to push") {
		t.Errorf("errors = %v, want a push failure notice", reporter.errors)
	}
}

func TestSync_PullFailureStopsLoop(t *testing.T) {
	m, fake := newTestManager(t)
	fake.fetchErr = errors.New("network unreachable")

	reporter := &recordingReporter{}
	if m.Sync(t.Context(), reporter) {
		t.Fatal("Sync() = true with failing pull")
	}
	if fake.pushCalls != 0 {
		t.Errorf("pushCalls = %d, want 0", fake.pushCalls)
	}
}

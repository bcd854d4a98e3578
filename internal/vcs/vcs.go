// Package vcs defines the version control interface consumed by the
// synchronization engine.
//
// The engine treats the dump repository's history as its transport and
// conflict-resolution substrate. It only needs a narrow set of primitives:
// tags (for the merge checkpoint), commit/fetch/merge/push, work-tree
// state queries, and file-level change sets between two points in history.
//
// # Usage
//
//	v, err := vcs.Open(dumpDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	engine := sync.NewManager(v, sync.Options{...})
//
// # Implementations
//
//   - internal/vcs/git: Git implementation shelling out to the git binary
package vcs

import "context"

// Type identifies a VCS backend.
type Type string

const (
	// TypeGit indicates a git-backed dump repository
	TypeGit Type = "git"
)

// String returns the string representation of the VCS type
func (t Type) String() string {
	return string(t)
}

// VCS is the set of version control primitives the synchronization engine
// relies on. Every method operates on a single working directory, the dump
// repository, returned by WorkDir.
//
// Network operations (Fetch, Push, Merge) take a context so callers can
// bound them; everything else is local and fast.
type VCS interface {
	// Name returns the VCS backend type
	Name() Type

	// WorkDir returns the working directory this instance operates on.
	// This is the dump repository root.
	WorkDir() string

	// Init initializes version tracking in WorkDir.
	// The directory must already exist.
	Init() error

	// CreateTag creates a tag with the given name at the current head
	CreateTag(name string) error

	// DeleteTag deletes the named tag.
	// Returns ErrTagNotFound if the tag does not exist.
	DeleteTag(name string) error

	// HasTag returns true if the named tag exists
	HasTag(name string) bool

	// ResetTo discards the working tree and moves the current head back
	// to the given reference, typically a tag name.
	ResetTo(ref string) error

	// IsWorkTreeClean returns true if there are no uncommitted changes
	IsWorkTreeClean() (bool, error)

	// IsUpToDate returns true if the local head already contains
	// everything the last fetched remote head has.
	IsUpToDate() (bool, error)

	// Fetch downloads remote history without merging it
	Fetch(ctx context.Context) error

	// Merge merges the last fetched remote head into the working tree
	Merge(ctx context.Context) error

	// Push publishes local history to the remote.
	// Returns ErrNotFastForward if the remote advanced concurrently;
	// any other failure is a generic VCS error.
	Push(ctx context.Context) error

	// CommitAll stages every change in the working tree and commits it
	// with the given message.
	CommitAll(message string) error

	// ChangesSince returns the file-level changes between the given
	// reference and the current head.
	ChangesSince(ref string) (*ChangeSet, error)

	// FileAtRef returns the content of a file as recorded at the given
	// reference, without touching the working tree. Used to inspect the
	// fetched-but-unmerged remote state.
	FileAtRef(ref, path string) ([]byte, error)
}

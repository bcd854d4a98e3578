// Package sync implements the synchronization engine.
//
// The engine reconciles the local task database with the shared,
// version-controlled dump so independent replicas can exchange changes
// asynchronously. It owns all cross-cutting knowledge of versions, tags,
// and operation sequencing; the VCS, the replicator, and the dump layout
// each perform one stateless transformation under its direction.
//
// The protocol is commit → fetch → version gate → merge → import → push.
// Crash safety across these steps comes from a single durable artifact:
// the merge checkpoint tag, created before every merge attempt and
// deleted only when the merge fully completes. Its presence after a
// crash is the signal that AbortMerge can restore the pre-merge state.
package sync

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kotenev/yokadi/internal/db"
	"github.com/kotenev/yokadi/internal/dump"
	"github.com/kotenev/yokadi/internal/replicate"
	"github.com/kotenev/yokadi/internal/vcs"
)

// BeforeMergeTag is the merge checkpoint tag name. At most one such tag
// exists at a time; its presence means a merge is in progress and has
// not been finalized.
const BeforeMergeTag = "before-merge"

// SyncCommitMessage labels commits of local changes made by Sync.
const SyncCommitMessage = "s_sync"

// initialCommitMessage labels the bootstrap commit of a new dump.
const initialCommitMessage = "Created"

// DefaultRemoteRef is the remote reference local history is compared
// against to decide whether there is anything to push.
const DefaultRemoteRef = "origin/master"

// DefaultMaxPushRetries bounds how many times Sync re-pulls and retries
// a push rejected as not-fast-forward before giving up.
const DefaultMaxPushRetries = 10

// Manager orchestrates dump creation, pull, merge, import, push, and
// integrity verification over a single dump working copy.
//
// A Manager assumes exclusive access to its local working copy; use
// internal/lockfile to enforce that across processes. Concurrent remote
// writers are tolerated through the Sync retry loop.
type Manager struct {
	vcs        vcs.VCS
	dumpDir    string
	database   *db.DB
	replicator *replicate.Replicator

	supportedVersion int
	remoteRef        string
	maxPushRetries   int
	logger           *log.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDatabase hands the engine the caller-owned database session.
// The engine never opens or closes it. Operations that touch the
// database (Pull, Sync, Dump, ImportAll, CheckDumpIntegrity) require it.
func WithDatabase(database *db.DB) Option {
	return func(m *Manager) {
		m.database = database
	}
}

// WithSupportedVersion overrides the dump format version the engine
// accepts. Defaults to dump.FormatVersion; tests use this to exercise
// version combinations.
func WithSupportedVersion(version int) Option {
	return func(m *Manager) {
		m.supportedVersion = version
	}
}

// WithRemoteRef overrides the remote reference used to detect pending
// pushes (default "origin/master").
func WithRemoteRef(ref string) Option {
	return func(m *Manager) {
		m.remoteRef = ref
	}
}

// WithMaxPushRetries bounds the not-fast-forward retry loop in Sync.
func WithMaxPushRetries(n int) Option {
	return func(m *Manager) {
		m.maxPushRetries = n
	}
}

// WithLogger sets the engine's internal logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a synchronization engine over the given VCS
// working copy.
func NewManager(v vcs.VCS, opts ...Option) *Manager {
	m := &Manager{
		vcs:              v,
		dumpDir:          v.WorkDir(),
		supportedVersion: dump.FormatVersion,
		remoteRef:        DefaultRemoteRef,
		maxPushRetries:   DefaultMaxPushRetries,
	}
	for _, opt := range opts {
		opt(m)
	}
	// A negative cap would wrap to a huge unsigned retry count.
	if m.maxPushRetries < 0 {
		m.maxPushRetries = 0
	}
	if m.logger == nil {
		m.logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	if m.database != nil {
		m.replicator = replicate.New(m.dumpDir, m.database, m.logger)
	}
	return m
}

// requireSession panics if the engine was built without a database.
// These operations are documented to need one; calling them without it
// is caller misuse, not a runtime condition.
func (m *Manager) requireSession() {
	if m.database == nil {
		panic("sync: operation requires a database session")
	}
}

// InitDumpRepository bootstraps a new dump: creates the directory,
// initializes VCS tracking, writes the version marker and the three
// empty collections, and makes the initial commit.
//
// This is a one-time bootstrap, not idempotent: the dump directory must
// not already exist.
func (m *Manager) InitDumpRepository() error {
	if _, err := os.Stat(m.dumpDir); err == nil {
		panic(fmt.Sprintf("sync: dump dir %s must not already exist", m.dumpDir))
	}

	if err := os.MkdirAll(m.dumpDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	if err := m.vcs.Init(); err != nil {
		return err
	}
	if err := dump.WriteVersionFile(m.dumpDir); err != nil {
		return err
	}
	if err := dump.CreateDirs(m.dumpDir); err != nil {
		return err
	}
	return m.vcs.CommitAll(initialCommitMessage)
}

// IsMergeInProgress returns true if the merge checkpoint tag exists.
func (m *Manager) IsMergeInProgress() bool {
	return m.vcs.HasTag(BeforeMergeTag)
}

// AbortMerge restores the working tree and history to the merge
// checkpoint and deletes the tag. Only valid while IsMergeInProgress()
// returns true.
func (m *Manager) AbortMerge() error {
	if !m.IsMergeInProgress() {
		panic("sync: AbortMerge called with no merge in progress")
	}
	if err := m.vcs.ResetTo(BeforeMergeTag); err != nil {
		return err
	}
	return m.vcs.DeleteTag(BeforeMergeTag)
}

// mergeOperation brackets fn between checkpoint tag creation and
// deletion. The tag is deleted only when fn succeeds; every other exit
// leaves it in place so the interrupted merge stays recoverable.
func (m *Manager) mergeOperation(fn func() error) error {
	if err := m.vcs.CreateTag(BeforeMergeTag); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return m.vcs.DeleteTag(BeforeMergeTag)
}

// HasChangesToCommit returns true if the working tree has uncommitted
// changes.
func (m *Manager) HasChangesToCommit() (bool, error) {
	clean, err := m.vcs.IsWorkTreeClean()
	if err != nil {
		return false, err
	}
	return !clean, nil
}

// HasChangesToImport returns true if history moved since the merge
// checkpoint. The checkpoint tag must exist.
func (m *Manager) HasChangesToImport() (bool, error) {
	if !m.vcs.HasTag(BeforeMergeTag) {
		panic("sync: HasChangesToImport called without merge checkpoint tag")
	}
	changes, err := m.vcs.ChangesSince(BeforeMergeTag)
	if err != nil {
		return false, err
	}
	return changes.HasChanges(), nil
}

// HasChangesToPush returns true if local history moved past the last
// known remote reference.
func (m *Manager) HasChangesToPush() (bool, error) {
	changes, err := m.vcs.ChangesSince(m.remoteRef)
	if err != nil {
		return false, err
	}
	return changes.HasChanges(), nil
}

// Dump exports every database row into the dump, removing files whose
// row is gone. Requires a database session.
func (m *Manager) Dump(ctx context.Context) error {
	m.requireSession()
	return m.replicator.Export(ctx)
}

// ClearDump removes every item file from the dump, keeping its layout
// and the version marker.
func (m *Manager) ClearDump() error {
	return dump.Clear(m.dumpDir)
}

// ImportAll replaces the database content with the dump content, inside
// a merge operation scope so an interrupted import stays recoverable.
// Requires a database session.
func (m *Manager) ImportAll(ctx context.Context) error {
	m.requireSession()
	return m.mergeOperation(func() error {
		return m.replicator.ImportAll(ctx)
	})
}

// Push publishes local history to the remote.
func (m *Manager) Push(ctx context.Context) error {
	return m.vcs.Push(ctx)
}

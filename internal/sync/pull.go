package sync

import (
	"context"
	"fmt"

	"github.com/kotenev/yokadi/internal/dump"
)

// Pull fetches remote history and, if it is compatible, merges and
// imports it into the database. Returns true on success.
//
// Fetch is deliberately separated from merge: the version gate runs
// against the fetched-but-unmerged remote state, so an incompatible
// remote dump never reaches the working tree.
//
// The working tree must be clean; a dirty tree is caller misuse.
func (m *Manager) Pull(ctx context.Context, reporter Reporter) bool {
	m.requireSession()

	clean, err := m.vcs.IsWorkTreeClean()
	if err != nil {
		reporter.ReportError(fmt.Sprintf("Failed to check work tree state: %v", err))
		return false
	}
	if !clean {
		panic("sync: Pull requires a clean work tree")
	}

	reporter.ReportProgress("Pulling remote changes")
	if err := m.vcs.Fetch(ctx); err != nil {
		reporter.ReportError(fmt.Sprintf("Failed to fetch: %v", err))
		return false
	}

	if !m.checkDumpVersion(reporter) {
		return false
	}

	err = m.mergeOperation(func() error {
		if err := m.vcs.Merge(ctx); err != nil {
			return err
		}

		hasChanges, err := m.HasChangesToImport()
		if err != nil {
			return err
		}
		if !hasChanges {
			reporter.ReportProgress("No remote changes")
			return nil
		}

		reporter.ReportProgress("Importing changes")
		changes, err := m.vcs.ChangesSince(BeforeMergeTag)
		if err != nil {
			return err
		}
		return m.replicator.ImportSince(ctx, changes)
	})
	if err != nil {
		// Checkpoint tag intentionally left in place: the failed merge
		// stays recoverable through AbortMerge.
		reporter.ReportError(fmt.Sprintf("Failed to merge remote changes: %v", err))
		return false
	}

	return true
}

// remoteDumpVersion returns the dump format version recorded at the
// fetched remote head. A dump with no reachable remote version marker
// (local-only working copy, remote not yet fetched) falls back to the
// local marker.
func (m *Manager) remoteDumpVersion() (int, error) {
	data, err := m.vcs.FileAtRef(m.remoteRef, dump.VersionFileName)
	if err != nil {
		return dump.ReadVersionFile(m.dumpDir)
	}
	return dump.ParseVersion(data)
}

// checkDumpVersion is the version compatibility gate. Given the remote
// dump version R and the engine's supported version L:
//
//   - R > L: the local engine is too old to interpret the remote format
//   - R < L with unmerged remote changes: the old-format changes cannot
//     be applied; the other replica must upgrade and resync
//   - R < L with nothing to merge: allowed. This is how a version bump
//     propagates to other replicas
//   - R == L: allowed
func (m *Manager) checkDumpVersion(reporter Reporter) bool {
	remoteVersion, err := m.remoteDumpVersion()
	if err != nil {
		reporter.ReportError(fmt.Sprintf("Failed to read remote dump version: %v", err))
		return false
	}

	if remoteVersion > m.supportedVersion {
		reporter.ReportError(fmt.Sprintf(
			"Remote dump version is %d but this program expects version %d.\n"+
				"You need to update this program to be able to synchronize your database.",
			remoteVersion, m.supportedVersion))
		return false
	}

	if remoteVersion < m.supportedVersion {
		upToDate, err := m.vcs.IsUpToDate()
		if err != nil {
			reporter.ReportError(fmt.Sprintf("Failed to check remote state: %v", err))
			return false
		}
		if !upToDate {
			reporter.ReportError(fmt.Sprintf(
				"Remote dump version is %d but this program expects version %d.\n"+
					"The remote dump has changes at version %d which have not been imported locally."+
					" You need to update the program which made these changes and sync them again.",
				remoteVersion, m.supportedVersion, remoteVersion))
			return false
		}
		// Remote is behind on version but has no pending changes: allow
		// the sync, this is how version bumps are pushed out.
	}

	return true
}

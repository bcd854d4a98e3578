package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kotenev/yokadi/internal/dump"
)

// CollectionDiff lists UUIDs present on only one side of the mirror.
type CollectionDiff struct {
	// MissingInDB lists UUIDs found in the dump but not in the database
	MissingInDB []string

	// MissingInDump lists UUIDs found in the database but not in the dump
	MissingInDump []string
}

// IntegrityReport is the structured result of CheckDumpIntegrity.
// It records divergence between the dump on disk and the live database;
// callers decide how to render or act on it.
type IntegrityReport struct {
	// Diffs holds the per-collection presence differences
	Diffs map[dump.Collection]*CollectionDiff

	// NameConflicts maps, per collection, each duplicated name to the
	// file paths of every item carrying it
	NameConflicts map[dump.Collection]map[string][]string

	// DanglingTasks lists task file paths whose projectUuid references
	// no known project
	DanglingTasks []string
}

// Clean returns true if the report contains no discrepancy.
func (r *IntegrityReport) Clean() bool {
	for _, diff := range r.Diffs {
		if len(diff.MissingInDB) > 0 || len(diff.MissingInDump) > 0 {
			return false
		}
	}
	for _, conflicts := range r.NameConflicts {
		if len(conflicts) > 0 {
			return false
		}
	}
	return len(r.DanglingTasks) == 0
}

// CheckDumpIntegrity compares the dump on disk against the database and
// returns a structured report of every divergence: per-collection
// presence differences, duplicated project and alias names, and tasks
// referencing a non existing project.
//
// The pass is read-only and advisory; it never mutates state. The one
// hard failure is a malformed task file during the referential check,
// which is returned wrapped with the offending file's path.
func (m *Manager) CheckDumpIntegrity(ctx context.Context) (*IntegrityReport, error) {
	m.requireSession()

	report := &IntegrityReport{
		Diffs:         make(map[dump.Collection]*CollectionDiff),
		NameConflicts: make(map[dump.Collection]map[string][]string),
	}

	for _, c := range dump.AllCollections {
		diff, err := m.checkPresence(ctx, c)
		if err != nil {
			return nil, err
		}
		report.Diffs[c] = diff
	}

	for _, c := range []dump.Collection{dump.Projects, dump.Aliases} {
		conflicts, err := dump.FindNameConflicts(m.dumpDir, c, "name")
		if err != nil {
			return nil, err
		}
		report.NameConflicts[c] = conflicts
	}

	dangling, err := m.checkTaskProjects()
	if err != nil {
		return nil, err
	}
	report.DanglingTasks = dangling

	return report, nil
}

// checkPresence diffs the UUIDs recorded inside a collection's files
// against the UUIDs of the corresponding database table.
func (m *Manager) checkPresence(ctx context.Context, c dump.Collection) (*CollectionDiff, error) {
	dumpUUIDs, err := m.readDumpUUIDs(c)
	if err != nil {
		return nil, err
	}

	dbUUIDs := make(map[string]bool)
	switch c {
	case dump.Projects:
		projects, err := m.database.ListProjectsContext(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range projects {
			dbUUIDs[p.UUID] = true
		}
	case dump.Tasks:
		tasks, err := m.database.ListTasksContext(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			dbUUIDs[t.UUID] = true
		}
	case dump.Aliases:
		aliases, err := m.database.ListAliasesContext(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range aliases {
			dbUUIDs[a.UUID] = true
		}
	}

	diff := &CollectionDiff{}
	for uuid := range dumpUUIDs {
		if !dbUUIDs[uuid] {
			diff.MissingInDB = append(diff.MissingInDB, uuid)
		}
	}
	for uuid := range dbUUIDs {
		if !dumpUUIDs[uuid] {
			diff.MissingInDump = append(diff.MissingInDump, uuid)
		}
	}
	sort.Strings(diff.MissingInDB)
	sort.Strings(diff.MissingInDump)
	return diff, nil
}

// readDumpUUIDs collects the uuid field recorded inside each item file
// of a collection.
func (m *Manager) readDumpUUIDs(c dump.Collection) (map[string]bool, error) {
	uuids := make(map[string]bool)

	fileUUIDs, err := dump.ListUUIDs(m.dumpDir, c)
	if err != nil {
		return nil, err
	}
	for _, fileUUID := range fileUUIDs {
		path := c.ItemPath(m.dumpDir, fileUUID)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error in %s: %w", path, err)
		}

		var item struct {
			UUID string `json:"uuid"`
		}
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("error in %s: %w", path, err)
		}
		uuids[item.UUID] = true
	}
	return uuids, nil
}

// checkTaskProjects returns the path of every task file whose
// projectUuid references no known project file.
func (m *Manager) checkTaskProjects() ([]string, error) {
	projectUUIDs, err := dump.ListUUIDs(m.dumpDir, dump.Projects)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(projectUUIDs))
	for _, uuid := range projectUUIDs {
		known[uuid] = true
	}

	taskUUIDs, err := dump.ListUUIDs(m.dumpDir, dump.Tasks)
	if err != nil {
		return nil, err
	}

	var dangling []string
	for _, uuid := range taskUUIDs {
		path := dump.Tasks.ItemPath(m.dumpDir, uuid)
		task, err := dump.ReadTaskFile(path)
		if err != nil {
			return nil, fmt.Errorf("error in %s: %w", path, err)
		}
		if !known[task.ProjectUUID] {
			dangling = append(dangling, path)
		}
	}
	sort.Strings(dangling)
	return dangling, nil
}

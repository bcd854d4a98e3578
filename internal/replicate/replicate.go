// Package replicate translates between database rows and dump files.
//
// The Replicator owns both directions of the mirror: Export writes every
// row of the task database into the dump's per-entity JSON collections
// (removing files whose row is gone), and ImportSince/ImportAll apply
// committed file changes back onto the database.
//
// The replicator is stateless between calls; the synchronization engine
// decides when each direction runs and inside which merge scope.
package replicate

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kotenev/yokadi/internal/db"
	"github.com/kotenev/yokadi/internal/dump"
	"github.com/kotenev/yokadi/internal/vcs"
)

// Replicator converts between database rows and dump files.
type Replicator struct {
	dumpDir string
	db      *db.DB
	logger  *log.Logger
}

// New creates a Replicator bound to a dump directory and a database.
//
// If logger is nil, a default logger writing to stderr is used.
func New(dumpDir string, database *db.DB, logger *log.Logger) *Replicator {
	if logger == nil {
		logger = log.New(os.Stderr, "[replicate] ", log.LstdFlags)
	}
	return &Replicator{
		dumpDir: dumpDir,
		db:      database,
		logger:  logger,
	}
}

// Export writes every database row into the dump and removes dump files
// whose UUID no longer exists in the database. The dump directories must
// already exist.
func (r *Replicator) Export(ctx context.Context) error {
	projects, err := r.db.ListProjectsContext(ctx)
	if err != nil {
		return err
	}
	projectUUIDs := make(map[string]bool, len(projects))
	for _, project := range projects {
		if err := dump.WriteProjectFile(r.dumpDir, project); err != nil {
			return err
		}
		projectUUIDs[project.UUID] = true
	}

	tasks, err := r.db.ListTasksContext(ctx)
	if err != nil {
		return err
	}
	taskUUIDs := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if err := dump.WriteTaskFile(r.dumpDir, task); err != nil {
			return err
		}
		taskUUIDs[task.UUID] = true
	}

	aliases, err := r.db.ListAliasesContext(ctx)
	if err != nil {
		return err
	}
	aliasUUIDs := make(map[string]bool, len(aliases))
	for _, alias := range aliases {
		if err := dump.WriteAliasFile(r.dumpDir, alias); err != nil {
			return err
		}
		aliasUUIDs[alias.UUID] = true
	}

	for c, live := range map[dump.Collection]map[string]bool{
		dump.Projects: projectUUIDs,
		dump.Tasks:    taskUUIDs,
		dump.Aliases:  aliasUUIDs,
	} {
		if err := r.removeStale(c, live); err != nil {
			return err
		}
	}

	r.logger.Printf("Exported %d projects, %d tasks, %d aliases",
		len(projects), len(tasks), len(aliases))
	return nil
}

// removeStale deletes collection files whose UUID is not in live
func (r *Replicator) removeStale(c dump.Collection, live map[string]bool) error {
	uuids, err := dump.ListUUIDs(r.dumpDir, c)
	if err != nil {
		return err
	}
	for _, uuid := range uuids {
		if live[uuid] {
			continue
		}
		path := c.ItemPath(r.dumpDir, uuid)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale %s file %s: %w", c, path, err)
		}
		r.logger.Printf("Removed stale %s file: %s", c, uuid)
	}
	return nil
}

// ImportSince applies a committed change set onto the database: added and
// modified dump files are upserted as rows, removed files delete their
// rows. Paths outside the three collections (such as the version marker)
// are ignored.
func (r *Replicator) ImportSince(ctx context.Context, changes *vcs.ChangeSet) error {
	for _, path := range changes.Touched() {
		if err := r.applyFile(ctx, path); err != nil {
			return err
		}
	}
	for _, path := range changes.Removed {
		if err := r.applyRemoval(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// ImportAll replaces the database content with the dump content.
// Projects are imported before tasks so referential checks on a fresh
// replica see projects first.
func (r *Replicator) ImportAll(ctx context.Context) error {
	if err := r.clearTables(ctx); err != nil {
		return err
	}

	for _, c := range dump.AllCollections {
		uuids, err := dump.ListUUIDs(r.dumpDir, c)
		if err != nil {
			return err
		}
		for _, uuid := range uuids {
			rel := filepath.Join(string(c), uuid+".json")
			if err := r.applyFile(ctx, rel); err != nil {
				return err
			}
		}
	}

	r.logger.Printf("Imported full dump from %s", r.dumpDir)
	return nil
}

// clearTables removes every row from every table
func (r *Replicator) clearTables(ctx context.Context) error {
	for _, table := range []string{"tasks", "projects", "aliases"} {
		if _, err := r.db.RawDB().ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}
	return nil
}

// applyFile upserts the row corresponding to one dump file.
// path is relative to the dump root, e.g. "tasks/<uuid>.json".
func (r *Replicator) applyFile(ctx context.Context, path string) error {
	c, ok := splitItemPath(path)
	if !ok {
		return nil
	}

	full := filepath.Join(r.dumpDir, path)
	switch c {
	case dump.Projects:
		project, err := dump.ReadProjectFile(full)
		if err != nil {
			return err
		}
		return r.db.UpsertProjectContext(ctx, project)
	case dump.Tasks:
		task, err := dump.ReadTaskFile(full)
		if err != nil {
			return err
		}
		return r.db.UpsertTaskContext(ctx, task)
	case dump.Aliases:
		alias, err := dump.ReadAliasFile(full)
		if err != nil {
			return err
		}
		return r.db.UpsertAliasContext(ctx, alias)
	}
	return nil
}

// applyRemoval deletes the row corresponding to one removed dump file
func (r *Replicator) applyRemoval(ctx context.Context, path string) error {
	c, ok := splitItemPath(path)
	if !ok {
		return nil
	}

	uuid := strings.TrimSuffix(filepath.Base(path), ".json")
	switch c {
	case dump.Projects:
		return r.db.DeleteProjectContext(ctx, uuid)
	case dump.Tasks:
		return r.db.DeleteTaskContext(ctx, uuid)
	case dump.Aliases:
		return r.db.DeleteAliasContext(ctx, uuid)
	}
	return nil
}

// splitItemPath maps a repo-relative path to its collection.
// Returns false for paths that are not collection item files.
func splitItemPath(path string) (dump.Collection, bool) {
	path = filepath.ToSlash(path)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || !strings.HasSuffix(parts[1], ".json") || strings.Contains(parts[1], "/") {
		return "", false
	}

	for _, c := range dump.AllCollections {
		if parts[0] == string(c) {
			return c, true
		}
	}
	return "", false
}

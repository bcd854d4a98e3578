// Package dump defines the on-disk layout of the dump repository: the
// version marker file and the three per-entity collections (projects,
// tasks, aliases), each holding one JSON file per item named by UUID.
//
// The dump is the file-based serialization of the task database used as
// the synchronization transport between replicas. Its history lives in a
// VCS working directory; this package only knows about file content and
// layout, never about history.
package dump

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FormatVersion is the dump format version this code reads and writes.
// It is recorded in the version marker file at the dump root and checked
// by the engine's compatibility gate before merging remote changes.
const FormatVersion = 2

// VersionFileName is the version marker file at the dump root.
const VersionFileName = "version"

// Collection identifies one of the dump's entity collections.
// The string value is also the collection's directory name.
type Collection string

const (
	// Projects holds one file per project, named <uuid>.json
	Projects Collection = "projects"
	// Tasks holds one file per task, named <uuid>.json
	Tasks Collection = "tasks"
	// Aliases holds one file per command alias, named <uuid>.json
	Aliases Collection = "aliases"
)

// AllCollections lists every collection in a stable order.
var AllCollections = []Collection{Projects, Tasks, Aliases}

// String returns the collection directory name
func (c Collection) String() string {
	return string(c)
}

// Dir returns the collection's directory under dumpDir
func (c Collection) Dir(dumpDir string) string {
	return filepath.Join(dumpDir, string(c))
}

// ItemPath returns the path of an item file within the collection
func (c Collection) ItemPath(dumpDir, uuid string) string {
	return filepath.Join(dumpDir, string(c), uuid+".json")
}

// CreateDirs creates the three empty collection directories under dumpDir
func CreateDirs(dumpDir string) error {
	for _, c := range AllCollections {
		if err := os.Mkdir(c.Dir(dumpDir), 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", c, err)
		}
	}
	return nil
}

// WriteVersionFile records FormatVersion in the dump's version marker
func WriteVersionFile(dumpDir string) error {
	path := filepath.Join(dumpDir, VersionFileName)
	data := strconv.Itoa(FormatVersion) + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}
	return nil
}

// ParseVersion parses the content of a version marker file
func ParseVersion(data []byte) (int, error) {
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed version marker %q: %w", strings.TrimSpace(string(data)), err)
	}
	return version, nil
}

// ReadVersionFile reads the version marker from dumpDir
func ReadVersionFile(dumpDir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dumpDir, VersionFileName))
	if err != nil {
		return 0, fmt.Errorf("failed to read version file: %w", err)
	}
	return ParseVersion(data)
}

// Clear removes every item file from every collection, leaving the
// directories, the version marker, and any VCS metadata in place.
func Clear(dumpDir string) error {
	for _, c := range AllCollections {
		uuids, err := ListUUIDs(dumpDir, c)
		if err != nil {
			return err
		}
		for _, uuid := range uuids {
			if err := os.Remove(c.ItemPath(dumpDir, uuid)); err != nil {
				return fmt.Errorf("failed to remove %s item %s: %w", c, uuid, err)
			}
		}
	}
	return nil
}

// writeItemFile writes data to path, skipping the write when the file
// already holds exactly these bytes. Rewriting unchanged items would
// ripple spurious change events to anything watching the dump.
func writeItemFile(path string, data []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	return os.WriteFile(path, data, 0644)
}

// ListUUIDs returns the UUIDs of every item file in the collection,
// derived from the file names. Non-JSON files are ignored.
func ListUUIDs(dumpDir string, c Collection) ([]string, error) {
	entries, err := os.ReadDir(c.Dir(dumpDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s directory: %w", c, err)
	}

	var uuids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		uuids = append(uuids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return uuids, nil
}

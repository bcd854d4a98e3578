package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindNameConflicts scans a collection for items sharing the same value
// of a JSON field (typically "name") and returns, for each duplicated
// value, the file path of every item carrying it. Values held by a
// single item are not reported.
//
// Unreadable or non-JSON files are skipped; name unicity is advisory
// and a corrupt file is reported elsewhere.
func FindNameConflicts(dumpDir string, c Collection, field string) (map[string][]string, error) {
	dir := c.Dir(dumpDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s directory: %w", c, err)
	}

	byValue := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var item map[string]any
		if err := json.Unmarshal(data, &item); err != nil {
			continue
		}

		value, ok := item[field].(string)
		if !ok || value == "" {
			continue
		}
		byValue[value] = append(byValue[value], path)
	}

	conflicts := make(map[string][]string)
	for value, paths := range byValue {
		if len(paths) > 1 {
			sort.Strings(paths)
			conflicts[value] = paths
		}
	}
	return conflicts, nil
}

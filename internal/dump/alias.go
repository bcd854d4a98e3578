package dump

import (
	"encoding/json"
	"fmt"
	"os"
)

// Alias mirrors one row of the aliases table as stored in
// aliases/<uuid>.json. An alias maps a short name to a full command.
type Alias struct {
	UUID    string `json:"uuid"`
	Name    string `json:"name"`
	Command string `json:"command"`
}

// Validate checks if the Alias has valid field values.
func (a *Alias) Validate() error {
	if a.UUID == "" {
		return fmt.Errorf("uuid is required")
	}
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	if a.Command == "" {
		return fmt.Errorf("command is required")
	}
	return nil
}

// Filename returns the canonical file name for this alias: <uuid>.json
func (a *Alias) Filename() string {
	return a.UUID + ".json"
}

// ReadAliasFile reads and parses an alias JSON file from the given path.
func ReadAliasFile(path string) (*Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file %s: %w", path, err)
	}

	var alias Alias
	if err := json.Unmarshal(data, &alias); err != nil {
		return nil, fmt.Errorf("failed to parse alias file %s: %w", path, err)
	}

	if err := alias.Validate(); err != nil {
		return nil, fmt.Errorf("invalid alias file %s: %w", path, err)
	}

	return &alias, nil
}

// WriteAliasFile writes an Alias to aliases/<uuid>.json under dumpDir.
func WriteAliasFile(dumpDir string, alias *Alias) error {
	if err := alias.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid alias: %w", err)
	}

	data, err := json.MarshalIndent(alias, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alias %s: %w", alias.UUID, err)
	}

	path := Aliases.ItemPath(dumpDir, alias.UUID)
	if err := writeItemFile(path, data); err != nil {
		return fmt.Errorf("failed to write alias file %s: %w", path, err)
	}

	return nil
}

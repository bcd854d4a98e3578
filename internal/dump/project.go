package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Project mirrors one row of the projects table as stored in
// projects/<uuid>.json.
type Project struct {
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Active       bool      `json:"active"`
	CreationDate time.Time `json:"creationDate"`
}

// Validate checks if the Project has valid field values.
func (p *Project) Validate() error {
	if p.UUID == "" {
		return fmt.Errorf("uuid is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Filename returns the canonical file name for this project: <uuid>.json
func (p *Project) Filename() string {
	return p.UUID + ".json"
}

// ReadProjectFile reads and parses a project JSON file from the given path.
func ReadProjectFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file %s: %w", path, err)
	}

	var project Project
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project file %s: %w", path, err)
	}

	return &project, nil
}

// WriteProjectFile writes a Project to projects/<uuid>.json under dumpDir.
func WriteProjectFile(dumpDir string, project *Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid project: %w", err)
	}

	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project %s: %w", project.UUID, err)
	}

	path := Projects.ItemPath(dumpDir, project.UUID)
	if err := writeItemFile(path, data); err != nil {
		return fmt.Errorf("failed to write project file %s: %w", path, err)
	}

	return nil
}

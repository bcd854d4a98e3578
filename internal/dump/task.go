package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Task mirrors one row of the tasks table as stored in tasks/<uuid>.json.
// Fields are flat so that per-field edits on different replicas merge
// cleanly at the file level.
type Task struct {
	UUID        string `json:"uuid"`
	ProjectUUID string `json:"projectUuid"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"` // new, started, done
	Urgency     int    `json:"urgency"`

	CreationDate time.Time  `json:"creationDate"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	DoneDate     *time.Time `json:"doneDate,omitempty"`

	// Keywords maps keyword name to its optional integer value
	Keywords map[string]int `json:"keywords,omitempty"`
}

// Validate checks if the Task has valid field values.
func (t *Task) Validate() error {
	if t.UUID == "" {
		return fmt.Errorf("uuid is required")
	}
	if t.ProjectUUID == "" {
		return fmt.Errorf("projectUuid is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if t.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// Filename returns the canonical file name for this task: <uuid>.json
func (t *Task) Filename() string {
	return t.UUID + ".json"
}

// ReadTaskFile reads and parses a task JSON file from the given path.
func ReadTaskFile(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task file %s: %w", path, err)
	}

	return &task, nil
}

// WriteTaskFile writes a Task to tasks/<uuid>.json under dumpDir.
func WriteTaskFile(dumpDir string, task *Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("cannot write invalid task: %w", err)
	}

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task %s: %w", task.UUID, err)
	}

	path := Tasks.ItemPath(dumpDir, task.UUID)
	if err := writeItemFile(path, data); err != nil {
		return fmt.Errorf("failed to write task file %s: %w", path, err)
	}

	return nil
}

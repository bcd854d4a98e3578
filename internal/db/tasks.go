package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kotenev/yokadi/internal/dump"
)

// Timestamps are stored as RFC 3339 text so the database stays
// byte-comparable with the JSON dump files.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(*t), Valid: true}
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func decodeTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := decodeTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpsertTask inserts or updates a task row keyed by UUID.
func (db *DB) UpsertTask(task *dump.Task) error {
	return db.UpsertTaskContext(context.Background(), task)
}

// UpsertTaskContext inserts or updates a task with context support.
func (db *DB) UpsertTaskContext(ctx context.Context, task *dump.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	keywordsJSON, err := json.Marshal(task.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	query := `
	INSERT INTO tasks (
		uuid, project_uuid, title, description, status, urgency,
		creation_date, due_date, done_date, keywords
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(uuid) DO UPDATE SET
		project_uuid = excluded.project_uuid,
		title = excluded.title,
		description = excluded.description,
		status = excluded.status,
		urgency = excluded.urgency,
		creation_date = excluded.creation_date,
		due_date = excluded.due_date,
		done_date = excluded.done_date,
		keywords = excluded.keywords
	`

	_, err = db.conn.ExecContext(ctx, query,
		task.UUID,
		task.ProjectUUID,
		task.Title,
		task.Description,
		task.Status,
		task.Urgency,
		encodeTime(task.CreationDate),
		encodeTimePtr(task.DueDate),
		encodeTimePtr(task.DoneDate),
		string(keywordsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert task %s: %w", task.UUID, err)
	}

	return nil
}

// DeleteTask removes a task row by UUID. Deleting a task that does not
// exist is not an error (idempotent).
func (db *DB) DeleteTask(uuid string) error {
	return db.DeleteTaskContext(context.Background(), uuid)
}

// DeleteTaskContext removes a task with context support.
func (db *DB) DeleteTaskContext(ctx context.Context, uuid string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM tasks WHERE uuid = ?", uuid); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", uuid, err)
	}
	return nil
}

// GetTask returns the task with the given UUID, or sql.ErrNoRows.
func (db *DB) GetTask(uuid string) (*dump.Task, error) {
	return db.GetTaskContext(context.Background(), uuid)
}

// GetTaskContext returns a task with context support.
func (db *DB) GetTaskContext(ctx context.Context, uuid string) (*dump.Task, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT uuid, project_uuid, title, description, status, urgency,
		       creation_date, due_date, done_date, keywords
		FROM tasks WHERE uuid = ?`, uuid)
	return scanTask(row)
}

// ListTasks returns every task row ordered by creation date.
func (db *DB) ListTasks() ([]*dump.Task, error) {
	return db.ListTasksContext(context.Background())
}

// ListTasksContext returns every task with context support.
func (db *DB) ListTasksContext(ctx context.Context) ([]*dump.Task, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT uuid, project_uuid, title, description, status, urgency,
		       creation_date, due_date, done_date, keywords
		FROM tasks ORDER BY creation_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*dump.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*dump.Task, error) {
	var task dump.Task
	var description, keywordsJSON sql.NullString
	var creationDate string
	var dueDate, doneDate sql.NullString

	err := s.Scan(
		&task.UUID,
		&task.ProjectUUID,
		&task.Title,
		&description,
		&task.Status,
		&task.Urgency,
		&creationDate,
		&dueDate,
		&doneDate,
		&keywordsJSON,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String

	if task.CreationDate, err = decodeTime(creationDate); err != nil {
		return nil, fmt.Errorf("task %s has malformed creation date: %w", task.UUID, err)
	}
	if task.DueDate, err = decodeTimePtr(dueDate); err != nil {
		return nil, fmt.Errorf("task %s has malformed due date: %w", task.UUID, err)
	}
	if task.DoneDate, err = decodeTimePtr(doneDate); err != nil {
		return nil, fmt.Errorf("task %s has malformed done date: %w", task.UUID, err)
	}

	if keywordsJSON.Valid && keywordsJSON.String != "" && keywordsJSON.String != "null" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &task.Keywords); err != nil {
			return nil, fmt.Errorf("task %s has malformed keywords: %w", task.UUID, err)
		}
	}

	return &task, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/kotenev/yokadi/internal/dump"
)

// UpsertProject inserts or updates a project row keyed by UUID.
func (db *DB) UpsertProject(project *dump.Project) error {
	return db.UpsertProjectContext(context.Background(), project)
}

// UpsertProjectContext inserts or updates a project with context support.
func (db *DB) UpsertProjectContext(ctx context.Context, project *dump.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	query := `
	INSERT INTO projects (uuid, name, active, creation_date)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(uuid) DO UPDATE SET
		name = excluded.name,
		active = excluded.active,
		creation_date = excluded.creation_date
	`

	_, err := db.conn.ExecContext(ctx, query,
		project.UUID,
		project.Name,
		project.Active,
		encodeTime(project.CreationDate),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", project.UUID, err)
	}

	return nil
}

// DeleteProject removes a project row by UUID (idempotent).
func (db *DB) DeleteProject(uuid string) error {
	return db.DeleteProjectContext(context.Background(), uuid)
}

// DeleteProjectContext removes a project with context support.
func (db *DB) DeleteProjectContext(ctx context.Context, uuid string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM projects WHERE uuid = ?", uuid); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", uuid, err)
	}
	return nil
}

// GetProject returns the project with the given UUID, or sql.ErrNoRows.
func (db *DB) GetProject(uuid string) (*dump.Project, error) {
	return db.GetProjectContext(context.Background(), uuid)
}

// GetProjectContext returns a project with context support.
func (db *DB) GetProjectContext(ctx context.Context, uuid string) (*dump.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT uuid, name, active, creation_date FROM projects WHERE uuid = ?", uuid)
	return scanProject(row)
}

// ListProjects returns every project row ordered by name.
func (db *DB) ListProjects() ([]*dump.Project, error) {
	return db.ListProjectsContext(context.Background())
}

// ListProjectsContext returns every project with context support.
func (db *DB) ListProjectsContext(ctx context.Context) ([]*dump.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT uuid, name, active, creation_date FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*dump.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func scanProject(s scanner) (*dump.Project, error) {
	var project dump.Project
	var creationDate string

	if err := s.Scan(&project.UUID, &project.Name, &project.Active, &creationDate); err != nil {
		return nil, err
	}

	var err error
	if project.CreationDate, err = decodeTime(creationDate); err != nil {
		return nil, fmt.Errorf("project %s has malformed creation date: %w", project.UUID, err)
	}

	return &project, nil
}

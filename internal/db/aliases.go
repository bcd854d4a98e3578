package db

import (
	"context"
	"fmt"

	"github.com/kotenev/yokadi/internal/dump"
)

// UpsertAlias inserts or updates an alias row keyed by UUID.
func (db *DB) UpsertAlias(alias *dump.Alias) error {
	return db.UpsertAliasContext(context.Background(), alias)
}

// UpsertAliasContext inserts or updates an alias with context support.
func (db *DB) UpsertAliasContext(ctx context.Context, alias *dump.Alias) error {
	if err := alias.Validate(); err != nil {
		return fmt.Errorf("invalid alias: %w", err)
	}

	query := `
	INSERT INTO aliases (uuid, name, command)
	VALUES (?, ?, ?)
	ON CONFLICT(uuid) DO UPDATE SET
		name = excluded.name,
		command = excluded.command
	`

	if _, err := db.conn.ExecContext(ctx, query, alias.UUID, alias.Name, alias.Command); err != nil {
		return fmt.Errorf("failed to upsert alias %s: %w", alias.UUID, err)
	}

	return nil
}

// DeleteAlias removes an alias row by UUID (idempotent).
func (db *DB) DeleteAlias(uuid string) error {
	return db.DeleteAliasContext(context.Background(), uuid)
}

// DeleteAliasContext removes an alias with context support.
func (db *DB) DeleteAliasContext(ctx context.Context, uuid string) error {
	if _, err := db.conn.ExecContext(ctx, "DELETE FROM aliases WHERE uuid = ?", uuid); err != nil {
		return fmt.Errorf("failed to delete alias %s: %w", uuid, err)
	}
	return nil
}

// ListAliases returns every alias row ordered by name.
func (db *DB) ListAliases() ([]*dump.Alias, error) {
	return db.ListAliasesContext(context.Background())
}

// ListAliasesContext returns every alias with context support.
func (db *DB) ListAliasesContext(ctx context.Context) ([]*dump.Alias, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT uuid, name, command FROM aliases ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*dump.Alias
	for rows.Next() {
		var alias dump.Alias
		if err := rows.Scan(&alias.UUID, &alias.Name, &alias.Command); err != nil {
			return nil, err
		}
		aliases = append(aliases, &alias)
	}
	return aliases, rows.Err()
}

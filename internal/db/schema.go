package db

import (
	"context"
	"fmt"
)

// The UNIQUE constraint on (room_id, username) is load-bearing: two
// interleaved first-join attempts may both pass the existence check,
// and the constraint is the final arbiter of who inserted first.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		owner_name    TEXT NOT NULL,
		password_hash TEXT,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		is_delete     BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS room_members (
		room_id    TEXT NOT NULL,
		username   TEXT NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT FALSE,
		is_banned  BOOLEAN NOT NULL DEFAULT FALSE,
		ban_reason TEXT,
		photo      TEXT,
		UNIQUE (room_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id            TEXT NOT NULL,
		room_id       TEXT NOT NULL,
		name          TEXT NOT NULL,
		type          TEXT NOT NULL CHECK (type IN ('file', 'directory')),
		parent_dir_id TEXT,
		content       TEXT,
		created_by    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (room_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         TEXT PRIMARY KEY,
		room_id    TEXT NOT NULL,
		username   TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_files_room ON files (room_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room_time ON messages (room_id, created_at)`,
}

// Migrate applies the schema. Every statement is idempotent, so it is
// safe to run on every startup.
func Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema migration failed: %w", err)
		}
	}
	return nil
}

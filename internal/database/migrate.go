package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_console_sessions.up.sql
var consoleSessionsSQL string

// EnsureSchema creates the session table when it is missing. The SQL is
// idempotent.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasTable(ctx, "console_sessions")
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("console_sessions table missing; applying migration 001")
		if _, err := db.Pool.Exec(ctx, consoleSessionsSQL); err != nil {
			return fmt.Errorf("apply console sessions migration: %w", err)
		}
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasTable(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			  AND table_name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

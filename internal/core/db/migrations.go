package db

import (
	"fmt"
)

// migrate applies database migrations for existing databases
func (db *DB) migrate() error {
	// Migration 1: track when a workspace was last opened
	if err := db.migration001AddLastOpened(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}
	return nil
}

// migration001AddLastOpened adds workspaces.last_opened_at
func (db *DB) migration001AddLastOpened() error {
	var hasColumn bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('workspaces')
		WHERE name='last_opened_at'
	`).Scan(&hasColumn)
	if err != nil {
		return err
	}
	if hasColumn {
		return nil
	}

	_, err = db.conn.Exec(`
		ALTER TABLE workspaces ADD COLUMN last_opened_at DATETIME;
		CREATE INDEX IF NOT EXISTS idx_workspaces_last_opened_at ON workspaces(last_opened_at);
	`)
	return err
}

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Draft is unsent composer text for one workspace
type Draft struct {
	SessionID string
	Content   string
	UpdatedAt time.Time
}

// SaveDraft stores the composer text for a workspace. Saving blank text
// removes the draft.
func (db *DB) SaveDraft(sessionID, content string) error {
	if strings.TrimSpace(content) == "" {
		return db.DeleteDraft(sessionID)
	}
	_, err := db.conn.Exec(`
		INSERT INTO drafts (session_id, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at
	`, sessionID, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the saved draft for a workspace, or "" when there is none
func (db *DB) LoadDraft(sessionID string) (string, error) {
	var content string
	err := db.conn.QueryRow(`SELECT content FROM drafts WHERE session_id = ?`, sessionID).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load draft: %w", err)
	}
	return content, nil
}

// DeleteDraft removes a workspace's draft. Deleting a missing draft is not an error.
func (db *DB) DeleteDraft(sessionID string) error {
	if _, err := db.conn.Exec(`DELETE FROM drafts WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

// ListDrafts returns every saved draft, most recent first
func (db *DB) ListDrafts() ([]Draft, error) {
	rows, err := db.conn.Query(`SELECT session_id, content, updated_at FROM drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.SessionID, &d.Content, &d.UpdatedAt); err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

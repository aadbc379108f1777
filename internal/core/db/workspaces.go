package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
)

// Workspace is a cached workspace row
type Workspace struct {
	models.Session
	HasDraft     bool
	LastOpenedAt time.Time
}

// UpsertWorkspaces records the latest known state of workspaces
func (db *DB) UpsertWorkspaces(sessions []models.Session) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range sessions {
		_, err = tx.Exec(`
			INSERT INTO workspaces
			(session_id, name, status, current_score, origin_hash, created_at, updated_at, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(session_id) DO UPDATE SET
				name = excluded.name,
				status = excluded.status,
				current_score = excluded.current_score,
				origin_hash = COALESCE(NULLIF(excluded.origin_hash, ''), workspaces.origin_hash),
				created_at = COALESCE(excluded.created_at, workspaces.created_at),
				updated_at = COALESCE(excluded.updated_at, workspaces.updated_at),
				synced_at = CURRENT_TIMESTAMP
		`, s.ID, s.Name, string(s.Status), s.CurrentScore, s.OriginHash, nullTime(s.CreatedAt), nullTime(s.UpdatedAt))
		if err != nil {
			return fmt.Errorf("upsert workspace %s: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

// MarkOpened stamps a workspace as opened now. Unknown workspaces get a
// placeholder row.
func (db *DB) MarkOpened(sessionID string) error {
	_, err := db.conn.Exec(`
		INSERT INTO workspaces (session_id, last_opened_at) VALUES (?, ?)
		ON CONFLICT(session_id) DO UPDATE SET last_opened_at = excluded.last_opened_at
	`, sessionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to mark workspace opened: %w", err)
	}
	return nil
}

// ListWorkspaces returns cached workspaces, most recently opened first, then
// most recently updated.
func (db *DB) ListWorkspaces() ([]Workspace, error) {
	rows, err := db.conn.Query(`
		SELECT
			w.session_id,
			COALESCE(w.name, ''),
			COALESCE(w.status, ''),
			COALESCE(w.current_score, 0),
			COALESCE(w.origin_hash, ''),
			w.created_at,
			w.updated_at,
			w.last_opened_at,
			EXISTS (SELECT 1 FROM drafts d WHERE d.session_id = w.session_id)
		FROM workspaces w
		ORDER BY w.last_opened_at IS NULL, w.last_opened_at DESC, w.updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Workspace
	for rows.Next() {
		var w Workspace
		var status string
		var created, updated, lastOpened sql.NullTime
		if err := rows.Scan(&w.ID, &w.Name, &status, &w.CurrentScore, &w.OriginHash,
			&created, &updated, &lastOpened, &w.HasDraft); err != nil {
			return nil, err
		}
		w.Status = models.ParseStatus(status)
		w.CreatedAt = created.Time
		w.UpdatedAt = updated.Time
		w.LastOpenedAt = lastOpened.Time
		out = append(out, w)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

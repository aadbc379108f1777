package db

func (db *DB) initSchema() error {
	schema := `
	-- One unsent draft per workspace
	CREATE TABLE IF NOT EXISTS drafts (
		session_id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	-- Last known state of workspaces seen by this client
	CREATE TABLE IF NOT EXISTS workspaces (
		session_id TEXT PRIMARY KEY,
		name TEXT,
		status TEXT,
		current_score INTEGER DEFAULT 0,
		origin_hash TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		synced_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_workspaces_updated_at ON workspaces(updated_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/models"
)

type fakeLister struct {
	sessions []models.Session
	err      error
}

func (f fakeLister) ListWorkspaces(ctx context.Context) ([]models.Session, error) {
	return f.sessions, f.err
}

func TestRefresh(t *testing.T) {
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = database.Close() }()

	remote := fakeLister{sessions: []models.Session{
		{ID: "ws-1", Name: "Poster", Status: models.StatusCollaborating, CurrentScore: 42, UpdatedAt: time.Now()},
		{ID: "ws-2", Name: "Song", Status: models.StatusCertified, CurrentScore: 91, UpdatedAt: time.Now().Add(-time.Hour)},
	}}

	rows, err := Refresh(context.Background(), remote, database)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != "ws-1" || rows[0].CurrentScore != 42 {
		t.Errorf("first row = %+v", rows[0].Session)
	}

	// Offline: the cache is still served, with the error
	offline := fakeLister{err: errors.New("connection refused")}
	rows, err = Refresh(context.Background(), offline, database)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if len(rows) != 2 {
		t.Errorf("got %d cached rows, want 2", len(rows))
	}
}

package workspace

import (
	"context"
	"fmt"

	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/models"
)

// Lister fetches the user's workspaces. *api.Client implements it.
type Lister interface {
	ListWorkspaces(ctx context.Context) ([]models.Session, error)
}

// Catalog is the local workspace cache. *db.DB implements it.
type Catalog interface {
	UpsertWorkspaces(sessions []models.Session) error
	ListWorkspaces() ([]db.Workspace, error)
}

// Refresh pulls the remote workspace list into the cache and returns the
// cached rows. When the remote call fails the cached rows are still returned,
// together with the error, so callers can show a stale list.
func Refresh(ctx context.Context, remote Lister, cache Catalog) ([]db.Workspace, error) {
	sessions, fetchErr := remote.ListWorkspaces(ctx)
	if fetchErr == nil {
		if err := cache.UpsertWorkspaces(sessions); err != nil {
			return nil, fmt.Errorf("failed to cache workspaces: %w", err)
		}
	}

	rows, err := cache.ListWorkspaces()
	if err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return rows, fmt.Errorf("failed to fetch workspaces: %w", fetchErr)
	}
	return rows, nil
}

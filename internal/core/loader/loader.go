// Package loader fetches a workspace and its transcript once at open time.
package loader

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Source is the backend the loader reads from. *api.Client implements it.
type Source interface {
	GetSession(ctx context.Context, id string) (models.Session, error)
	GetHistory(ctx context.Context, id string) ([]judgewire.Record, error)
}

// Result is a loaded workspace with its transcript oldest first.
type Result struct {
	Session models.Session
	History []models.Message
}

// Loader reads workspaces from a Source
type Loader struct {
	source Source
	logger *zap.Logger
}

// New creates a loader
func New(source Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{source: source, logger: logger}
}

// Load fetches session metadata, then history. History arrives newest first
// and is returned oldest first. Any error is returned as is; callers decide
// how to degrade.
func (l *Loader) Load(ctx context.Context, id string) (Result, error) {
	session, err := l.source.GetSession(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load workspace %s: %w", id, err)
	}
	if session.ID == "" {
		session.ID = id
	}

	records, err := l.source.GetHistory(ctx, id)
	if err != nil {
		return Result{Session: session}, fmt.Errorf("failed to load history for %s: %w", id, err)
	}

	history := make([]models.Message, 0, len(records))
	for _, rec := range records {
		history = append(history, models.FromRecord(rec))
	}
	slices.Reverse(history)

	enriched := 0
	for i := range history {
		if history[i].Analysis != nil {
			enriched++
		}
	}
	l.logger.Debug("workspace loaded",
		zap.String("workspace", id),
		zap.Int("messages", len(history)),
		zap.Int("with_analysis", enriched),
	)

	return Result{Session: session, History: history}, nil
}

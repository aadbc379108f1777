package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/config"
	"github.com/neilberkman/proofa/internal/core/db"
	"github.com/neilberkman/proofa/internal/core/logging"
	"github.com/neilberkman/proofa/internal/core/push"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

// app holds what every command needs. Commands build one with openApp and
// close it when they return.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	api    *api.Client
	push   *push.Client
	db     *db.DB
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func displayConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if dir := config.Dir(); dir != "" {
		return filepath.Join(dir, "config.toml")
	}
	return "config.toml"
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogFile, debugLog)
	if err != nil {
		// Logging is optional; keep going without it
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		logger = zap.NewNop()
	}

	database, err := db.New(dbPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Token == "" {
		fmt.Fprintf(os.Stderr, "Warning: no token configured; set PROOFA_TOKEN or token in %s\n", displayConfigPath())
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		api:    api.NewClient(cfg.BaseURL, cfg.Token, cfg.RequestTimeout, logger),
		push:   push.NewClient(cfg.PushURL, cfg.Token, logger),
		db:     database,
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// workspace builds a workspace for id. live subscribes to push events on
// Open; one-shot commands leave it off.
func (a *app) workspace(id string, live bool) *workspace.Workspace {
	opts := workspace.Options{
		Backend:             a.api,
		Drafts:              a.db,
		Mode:                a.cfg.Mode,
		CelebrationTemplate: a.cfg.CelebrationTemplate,
		Logger:              a.logger,
	}
	if live {
		opts.Push = a.push
	}
	if err := a.db.MarkOpened(id); err != nil {
		a.logger.Warn("failed to record workspace open", zap.Error(err))
	}
	return workspace.New(id, opts)
}

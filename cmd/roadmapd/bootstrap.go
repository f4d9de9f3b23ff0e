package main

import (
	"context"
	"fmt"
	"log/slog"

	"roadmap/internal/config"
	"roadmap/internal/daemon"
	"roadmap/internal/logging"
	"roadmap/internal/snapshotstore"
)

const logFileName = "roadmapd.log"

func run(ctx context.Context, configPath string) error {
	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg, logFileName)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if !exists {
		logger.Info("config file not found; using defaults", logging.String("config_path", path))
	}

	d, err := startDaemon(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	<-ctx.Done()
	logger.Info("roadmapd shutting down")
	return nil
}

// startDaemon opens the configured store and starts serving it. The caller
// owns the returned daemon and must Close it.
func startDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	if cfg.API.Token == "" {
		logging.WarnWithContext(logger, "api.token is empty; snapshot routes are unauthenticated", "auth_disabled",
			logging.String(logging.FieldErrorHint, "set api.token or ROADMAP_API_TOKEN"),
		)
	}

	store, err := snapshotstore.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("start daemon: %w", err)
	}
	return d, nil
}

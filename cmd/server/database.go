package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/redact"
)

// openDatabase connects using the configured URL and pool settings.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, sqlstore.Dialect, error) {
	log := logger.FromContext(ctx)

	db, dialect, err := sqlstore.Open(ctx, cfg.URL, sqlstore.PoolOptions{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
	})
	if err != nil {
		log.Error("failed to connect to database",
			slog.String("url", redact.String(cfg.URL)),
			slog.String("error", redact.Error(err)))
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established", slog.String("dialect", string(dialect)))
	return db, dialect, nil
}

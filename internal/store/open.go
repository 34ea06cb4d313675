package store

import (
	"context"
	"fmt"
	"log/slog"
)

// Open connects the backend named by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, path, url string, logger *slog.Logger) (Backend, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteBackend(ctx, path)
	case "postgres":
		return NewPostgresBackend(ctx, url, logger)
	}
	return nil, fmt.Errorf("unknown database driver %q", driver)
}

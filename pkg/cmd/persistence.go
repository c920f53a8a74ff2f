// Package cmd provides shared construction helpers for the command line
// binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/stagegate/stagegate/pkg/persistence"
	"github.com/stagegate/stagegate/pkg/persistence/file"
	"github.com/stagegate/stagegate/pkg/persistence/postgresql"
)

// NewPersistence builds a persistence backend from a database URL. A
// postgres:// URL selects PostgreSQL; anything else is treated as a directory
// path for the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		root := strings.TrimPrefix(databaseURL, "file://")

		return file.NewPersistence(root)
	}
}

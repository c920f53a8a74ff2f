package cmd

import (
	"context"
	"log/slog"

	"github.com/stagegate/stagegate/pkg/lock"
)

// NewProjectLocker builds the decision lock. With a Redis URL the lock is
// shared across API instances; without one it is process local.
func NewProjectLocker(ctx context.Context, logger *slog.Logger, redisURL string) (lock.ProjectLocker, error) {
	if redisURL == "" {
		return lock.NewMemoryLocker(), nil
	}

	return lock.NewRedisLocker(ctx, logger, redisURL)
}

package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockTTL = 30 * time.Second

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lock reacquired by another instance is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is a ProjectLocker backed by Redis SET NX, for deployments with
// more than one API instance.
type RedisLocker struct {
	client redis.UniversalClient
	logger *slog.Logger
}

func NewRedisLocker(ctx context.Context, logger *slog.Logger, redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLocker{
		client: client,
		logger: logger.With("module", "redis_locker"),
	}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, projectID string) (func(), error) {
	key := "stagegate:decision-lock:" + projectID
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire project lock: %w", err)
	}

	if !ok {
		return nil, ErrAlreadyLocked
	}

	release := func() {
		err := l.client.Eval(context.Background(), releaseScript, []string{key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Error("failed to release project lock", "project_id", projectID, "error", err)
		}
	}

	return release, nil
}

// Close closes the underlying Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

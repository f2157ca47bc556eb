package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ses9892/rag/internal/config"
)

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	slog.Info("connected to Redis", "addr", cfg.Addr())
	return client, nil
}

// Healthy reports whether the client can still reach the server. Used by the
// readiness probe; a nil client (Redis disabled) counts as healthy.
func Healthy(ctx context.Context, client *redis.Client) bool {
	if client == nil {
		return true
	}
	return client.Ping(ctx).Err() == nil
}

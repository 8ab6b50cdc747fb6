package cache

import (
	"context"
	"fmt"

	"workerscope/pkg/config"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects to the configured Redis and verifies it with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

package database

import (
	"context"
	"time"

	"cinetix/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// InitRedis builds a Redis client for snapshot caching. Returns nil when no
// address is configured or the server is unreachable; callers must treat a
// nil client as "caching disabled" and fall back to direct reads.
func InitRedis(config utils.RedisConfig) *redis.Client {
	if config.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return client
}

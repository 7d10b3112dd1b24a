package client

import (
	"context"
	"time"

	"crafthub/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil when the server cannot be reached so callers can
// degrade to running without Redis.
func NewRedisClient(log *logger.Logger, addr, password string, db int, connTimeout time.Duration) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Failed to ping Redis, continuing without it", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	return client
}

package redis

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
)

// Client aliases the go-redis client type.
type Client = redis.Client

// NewRedisClient builds a Redis client from config.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Close closes the client.
func Close(client *redis.Client) error {
	return client.Close()
}

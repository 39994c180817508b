package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each blob under a namespaced redis key. Blobs
// are persistent state, so no TTL is set.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects to redis and verifies the connection.
func NewRedisBackend(ctx context.Context, addr, password string, db int) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisBackend{client: client, prefix: "rotaboard:"}, nil
}

// Read returns the payload stored under key, or ErrNotFound.
func (b *RedisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Write stores the payload under key.
func (b *RedisBackend) Write(ctx context.Context, key string, data []byte) error {
	return b.client.Set(ctx, b.prefix+key, data, 0).Err()
}

// Ping checks the redis connection.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

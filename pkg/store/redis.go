package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/dashgrid/pkg/errors"
)

// RedisBackend stores values as plain redis strings.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to addr and pings it.
func NewRedisBackend(ctx context.Context, addr string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", addr)
	}
	return &RedisBackend{client: client}, nil
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "redis get %s", key))
	}
	return data, true, nil
}

// Set implements Backend. Values never expire.
func (b *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, key, data, 0).Err(); err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "redis set %s", key))
	}
	return nil
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "redis del %s", key))
	}
	return nil
}

// Keys implements Backend using SCAN, so it does not block the server.
func (b *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := b.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "redis scan %s*", prefix))
	}
	return keys, nil
}

// Kind implements Backend.
func (b *RedisBackend) Kind() string { return "redis" }

// Close closes the client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// Ensure RedisBackend implements Backend.
var _ Backend = (*RedisBackend)(nil)

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces page keys inside a shared redis database.
const DefaultRedisPrefix = "release-stats-csv:"

// RedisStore keeps entries as redis strings that expire after the TTL,
// so a key that still exists is fresh by construction.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to the redis server at url
// (redis://[user:pass@]host:port/db) and verifies it with a PING.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStoreFromClient(client, DefaultRedisPrefix, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client. Keys are prefixed with prefix.
// A ttl of 0 means [DefaultTTL].
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Key returns the redis key used for key.
func (s *RedisStore) Key(key string) string {
	return s.prefix + key
}

// IsFresh reports whether the key still exists.
func (s *RedisStore) IsFresh(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.Key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Read returns the stored bytes, or ErrNotFound once the key has expired.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Key(key))
	}
	return data, err
}

// Write stores data with the store's TTL as expiry.
func (s *RedisStore) Write(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.Key(key), data, s.ttl).Err()
}

// Delete removes the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.Key(key)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

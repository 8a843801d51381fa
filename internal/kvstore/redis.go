package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

// RedisStore implements Store using Redis
type RedisStore struct {
	logger *zap.Logger
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-based key-value store
func NewRedisStore(ctx context.Context, logger *zap.Logger, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "results"
	}

	return &RedisStore{
		logger: logger.Named("kvstore.redis"),
		client: client,
		prefix: prefix + ":",
		ttl:    cfg.TTL,
	}, nil
}

// Get implements Store.Get
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set implements Store.Set. The configured TTL caps the caller's ttl
// when both are set.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.ttl > 0 && (ttl <= 0 || ttl > s.ttl) {
		ttl = s.ttl
	}
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Remove implements Store.Remove
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Keys implements Store.Keys
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

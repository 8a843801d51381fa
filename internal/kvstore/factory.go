package kvstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

// Type represents the type of key-value store
type Type string

const (
	// TypeMemory represents the in-memory store
	TypeMemory Type = "memory"
	// TypeRedis represents the Redis-based store
	TypeRedis Type = "redis"
	// TypeSQLite represents the sqlite-backed store
	TypeSQLite Type = "sqlite"
)

// NewStore creates a new key-value store based on configuration
func NewStore(ctx context.Context, logger *zap.Logger, cfg *config.StoreConfig) (Store, error) {
	logger.Info("Initializing key-value store", zap.String("type", cfg.Type))
	switch Type(cfg.Type) {
	case TypeMemory:
		return NewMemoryStore(logger), nil
	case TypeRedis:
		return NewRedisStore(ctx, logger, cfg.Redis)
	case TypeSQLite:
		return NewSQLiteStore(logger, cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported key-value store type: %s", cfg.Type)
	}
}

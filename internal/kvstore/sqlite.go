package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

// KVEntry is the gorm model for one stored key.
type KVEntry struct {
	Key       string     `gorm:"primaryKey;column:key"`
	Value     string     `gorm:"column:value"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

// TableName implements gorm's Tabler.
func (KVEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStore implements Store on a local sqlite database, so cached
// results survive process restarts.
type SQLiteStore struct {
	logger *zap.Logger
	db     *gorm.DB
	now    func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and migrates) the database at cfg.Path.
func NewSQLiteStore(logger *zap.Logger, cfg config.SQLiteConfig) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}

	return &SQLiteStore{
		logger: logger.Named("kvstore.sqlite"),
		db:     db,
		now:    time.Now,
	}, nil
}

// Get implements Store.Get
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if entry.ExpiresAt != nil && s.now().After(*entry.ExpiresAt) {
		if err := s.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove expired entry", zap.String("key", key), zap.Error(err))
		}
		return "", ErrNotFound
	}
	return entry.Value, nil
}

// Set implements Store.Set
func (s *SQLiteStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: s.now()}
	if ttl > 0 {
		expires := s.now().Add(ttl)
		entry.ExpiresAt = &expires
	}
	return s.db.WithContext(ctx).Save(&entry).Error
}

// Remove implements Store.Remove
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&KVEntry{}, "key = ?", key).Error
}

// Keys implements Store.Keys
func (s *SQLiteStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/kvstore"
	"github.com/ieltsly/speaking-results/internal/result"
)

// KeyPrefix namespaces the entries this cache owns inside the shared
// key-value store.
const KeyPrefix = "session_"

// DefaultMaxAge is how long a cached result stays fresh.
const DefaultMaxAge = 5 * time.Minute

// Entry is the stored envelope: the result plus when it was cached.
type Entry struct {
	Data      *result.SessionResult `json:"data"`
	Timestamp time.Time             `json:"timestamp"`
}

// ResultCache is a TTL-based read-through cache for session results,
// keyed by session code. Caching is an optimization only: every store
// failure is logged and treated as a miss, never surfaced.
type ResultCache struct {
	store  kvstore.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewResultCache creates a cache backed by store.
func NewResultCache(store kvstore.Store, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		store:  store,
		logger: logger.Named("cache"),
		now:    time.Now,
	}
}

// Key returns the store key for a session code.
func Key(code string) string {
	return KeyPrefix + code
}

// Get returns the cached result for code if it is younger than maxAge.
// A stale entry is evicted and reported as a miss.
func (c *ResultCache) Get(ctx context.Context, code string, maxAge time.Duration) *result.SessionResult {
	raw, err := c.store.Get(ctx, Key(code))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			c.logger.Warn("cache read failed", zap.String("session_code", code), zap.Error(err))
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		c.logger.Warn("cache entry is corrupt, evicting",
			zap.String("session_code", code),
			zap.Error(err))
		c.evict(ctx, code)
		return nil
	}

	if c.now().Sub(entry.Timestamp) > maxAge {
		c.logger.Debug("cache entry expired", zap.String("session_code", code))
		c.evict(ctx, code)
		return nil
	}

	c.logger.Debug("cache hit", zap.String("session_code", code))
	return entry.Data
}

// Put stores data for code with the current timestamp. Failures are
// logged and swallowed.
func (c *ResultCache) Put(ctx context.Context, code string, data *result.SessionResult, maxAge time.Duration) {
	raw, err := json.Marshal(Entry{Data: data, Timestamp: c.now()})
	if err != nil {
		c.logger.Warn("failed to serialize cache entry", zap.String("session_code", code), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, Key(code), string(raw), maxAge); err != nil {
		c.logger.Warn("cache write failed", zap.String("session_code", code), zap.Error(err))
	}
}

// Clear evicts every entry this cache owns, leaving unrelated store
// entries untouched. Returns how many entries were removed.
func (c *ResultCache) Clear(ctx context.Context) int {
	keys, err := c.store.Keys(ctx, KeyPrefix)
	if err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
		return 0
	}
	removed := 0
	for _, key := range keys {
		if err := c.store.Remove(ctx, key); err != nil {
			c.logger.Warn("failed to remove cache entry", zap.String("key", key), zap.Error(err))
			continue
		}
		removed++
	}
	c.logger.Info("cache cleared", zap.Int("removed", removed))
	return removed
}

func (c *ResultCache) evict(ctx context.Context, code string) {
	if err := c.store.Remove(ctx, Key(code)); err != nil {
		c.logger.Warn("cache eviction failed", zap.String("session_code", code), zap.Error(err))
	}
}

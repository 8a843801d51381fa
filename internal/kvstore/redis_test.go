package kvstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := config.RedisConfig{
		Addr:   mr.Addr(),
		Prefix: "testresults",
		TTL:    time.Hour,
	}
	store, err := NewRedisStore(context.Background(), zap.NewNop(), cfg)
	if err != nil {
		t.Fatalf("failed to create RedisStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStoreConnectionError(t *testing.T) {
	cfg := config.RedisConfig{Addr: "127.0.0.1:0"}
	s, err := NewRedisStore(context.Background(), zap.NewNop(), cfg)
	assert.Nil(t, s)
	assert.Error(t, err)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "session_T1", `{"a":1}`, 5*time.Minute))
	v, err := store.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	// keys are namespaced in redis
	assert.True(t, mr.Exists("testresults:session_T1"))

	require.NoError(t, store.Remove(ctx, "session_T1"))
	_, err = store.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session_T1", "v", 5*time.Minute))
	mr.FastForward(5*time.Minute + time.Second)

	_, err := store.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTLCap(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	// caller ttl above the configured cap is clamped
	require.NoError(t, store.Set(ctx, "session_T1", "v", 48*time.Hour))
	ttl := mr.TTL("testresults:session_T1")
	assert.True(t, ttl > 0 && ttl <= time.Hour, "ttl %v should be capped at 1h", ttl)

	// zero ttl still gets the safety ttl
	require.NoError(t, store.Set(ctx, "session_T2", "v", 0))
	ttl = mr.TTL("testresults:session_T2")
	assert.True(t, ttl > 0 && ttl <= time.Hour)
}

func TestRedisStoreKeys(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session_a", "1", 0))
	require.NoError(t, store.Set(ctx, "session_b", "2", 0))
	require.NoError(t, store.Set(ctx, "other_c", "3", 0))

	keys, err := store.Keys(ctx, "session_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session_a", "session_b"}, keys)
}

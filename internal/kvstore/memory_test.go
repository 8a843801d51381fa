package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())

	_, err := s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "session_T1", `{"a":1}`, 0))
	v, err := s.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	require.NoError(t, s.Remove(ctx, "session_T1"))
	_, err = s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is fine
	assert.NoError(t, s.Remove(ctx, "session_T1"))
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "session_T1", "v", 5*time.Minute))

	v, err := s.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// advance past the ttl; the entry is evicted on read
	now = now.Add(5*time.Minute + time.Second)
	_, err = s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err := s.Keys(ctx, "session_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStoreKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())

	require.NoError(t, s.Set(ctx, "session_a", "1", 0))
	require.NoError(t, s.Set(ctx, "session_b", "2", 0))
	require.NoError(t, s.Set(ctx, "other_c", "3", 0))

	keys, err := s.Keys(ctx, "session_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session_a", "session_b"}, keys)
}

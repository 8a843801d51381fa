package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kv.db")}
	store, err := NewSQLiteStore(zap.NewNop(), cfg)
	require.NoError(t, err)
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	_, err := s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "session_T1", `{"a":1}`, 0))
	v, err := s.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)

	// overwrite
	require.NoError(t, s.Set(ctx, "session_T1", `{"a":2}`, 0))
	v, err = s.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, v)

	require.NoError(t, s.Remove(ctx, "session_T1"))
	_, err = s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreTTL(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "session_T1", "v", 5*time.Minute))
	_, err := s.Get(ctx, "session_T1")
	require.NoError(t, err)

	now = now.Add(5*time.Minute + time.Second)
	_, err = s.Get(ctx, "session_T1")
	assert.ErrorIs(t, err, ErrNotFound)

	// expired entry is gone, not just hidden
	keys, err := s.Keys(ctx, "session_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSQLiteStoreKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	require.NoError(t, s.Set(ctx, "session_a", "1", 0))
	require.NoError(t, s.Set(ctx, "session_b", "2", 0))
	require.NoError(t, s.Set(ctx, "other_c", "3", 0))

	keys, err := s.Keys(ctx, "session_")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session_a", "session_b"}, keys)
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s1, err := NewSQLiteStore(zap.NewNop(), config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "session_T1", "v", 0))

	s2, err := NewSQLiteStore(zap.NewNop(), config.SQLiteConfig{Path: path})
	require.NoError(t, err)
	v, err := s2.Get(ctx, "session_T1")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

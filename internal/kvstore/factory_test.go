package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/common/config"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	s, err := NewStore(ctx, logger, &config.StoreConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(ctx, logger, &config.StoreConfig{
		Type:   "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "kv.db")},
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)

	_, err = NewStore(ctx, logger, &config.StoreConfig{Type: "etcd"})
	assert.Error(t, err)
}

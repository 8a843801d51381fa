package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/kvstore"
	"github.com/ieltsly/speaking-results/internal/result"
)

func sampleResult(id string) *result.SessionResult {
	overall := 7.0
	return &result.SessionResult{
		SessionInfo: &result.SessionInfo{ID: id, Status: result.StatusCompleted},
		Conversations: []result.ConversationTurn{
			{QuestionText: "Q1", Transcript: "A1", IELTSScores: &result.IELTSScores{Overall: &overall}},
		},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(zap.NewNop())
	c := NewResultCache(store, zap.NewNop())

	now := time.Now()
	c.now = func() time.Time { return now }

	assert.Nil(t, c.Get(ctx, "T1", 5*time.Minute))

	data := sampleResult("T1")
	c.Put(ctx, "T1", data, 5*time.Minute)

	got := c.Get(ctx, "T1", 5*time.Minute)
	require.NotNil(t, got)
	assert.Equal(t, data, got)

	// after the window elapses the entry is gone from the store too
	now = now.Add(5*time.Minute + time.Second)
	assert.Nil(t, c.Get(ctx, "T1", 5*time.Minute))

	_, err := store.Get(ctx, Key("T1"))
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestCacheCorruptEntryEvicted(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(zap.NewNop())
	c := NewResultCache(store, zap.NewNop())

	require.NoError(t, store.Set(ctx, Key("T1"), "not json", 0))
	assert.Nil(t, c.Get(ctx, "T1", 5*time.Minute))

	_, err := store.Get(ctx, Key("T1"))
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestCacheClearLeavesUnrelatedEntries(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore(zap.NewNop())
	c := NewResultCache(store, zap.NewNop())

	c.Put(ctx, "T1", sampleResult("T1"), 0)
	c.Put(ctx, "T2", sampleResult("T2"), 0)
	require.NoError(t, store.Set(ctx, "unrelated_key", "keep me", 0))

	assert.Equal(t, 2, c.Clear(ctx))

	assert.Nil(t, c.Get(ctx, "T1", time.Hour))
	assert.Nil(t, c.Get(ctx, "T2", time.Hour))

	v, err := store.Get(ctx, "unrelated_key")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)
}

// failingStore simulates a broken external store (quota, serialization).
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("quota exceeded")
}
func (failingStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("quota exceeded")
}
func (failingStore) Remove(context.Context, string) error { return errors.New("quota exceeded") }
func (failingStore) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("quota exceeded")
}

func TestCacheStoreFailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	c := NewResultCache(failingStore{}, zap.NewNop())

	// none of these panic or error; the cache degrades to a no-op
	assert.Nil(t, c.Get(ctx, "T1", time.Minute))
	c.Put(ctx, "T1", sampleResult("T1"), time.Minute)
	assert.Equal(t, 0, c.Clear(ctx))
}

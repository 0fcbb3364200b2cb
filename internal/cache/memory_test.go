package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "catalog:ontology", []byte(`[{"id":"Q1"}]`), time.Hour))

	value, ok, err := store.Get(ctx, "catalog:ontology")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"Q1"}]`, string(value))

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("value"), 6*time.Hour))

	// Just inside the window the entry is returned unchanged.
	now = now.Add(6*time.Hour - time.Second)
	_, ok, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, ok)

	// Past the window it is treated as absent.
	now = now.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, "key")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "last-good", []byte("rows"), 0))

	now = now.Add(1000 * time.Hour)
	_, ok, err := store.Get(ctx, "last-good")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", []byte("old"), time.Hour))
	require.NoError(t, store.Set(ctx, "key", []byte("new"), time.Hour))

	value, ok, _ := store.Get(ctx, "key")
	require.True(t, ok)
	require.Equal(t, "new", string(value))
}

func TestMemoryStoreIncrementWithTTL(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	count, _, err = store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// A fresh window restarts the counter.
	now = now.Add(2 * time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "rate:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, store.Set(ctx, "c", []byte("3"), 0))

	now = now.Add(30 * time.Minute)
	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	_, ok, _ := store.Get(ctx, "b")
	require.True(t, ok)
	_, ok, _ = store.Get(ctx, "c")
	require.True(t, ok)
}

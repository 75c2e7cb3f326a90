package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyStore_SaveAndGet(t *testing.T) {
	svc, mr := newTestCache(t)
	store := NewIdempotencyStore(svc.Client())
	ctx := context.Background()

	miss, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, miss)

	resp := CachedResponse{StatusCode: 201, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	require.NoError(t, store.Save(ctx, "abc", resp, time.Hour))
	assert.True(t, mr.Exists("idempotency:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, resp, *got)

	mr.FastForward(2 * time.Hour)
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotencyStore_AcquireIsExclusive(t *testing.T) {
	svc, _ := newTestCache(t)
	store := NewIdempotencyStore(svc.Client())
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "k1"))
	ok, err = store.Acquire(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_CorruptValue(t *testing.T) {
	svc, mr := newTestCache(t)
	store := NewIdempotencyStore(svc.Client())

	require.NoError(t, mr.Set("idempotency:bad", "not-json"))
	_, err := store.Get(context.Background(), "bad")
	assert.Error(t, err)
}

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })
	return NewRedisStore(rc, ttl), mr
}

func TestRedisStoreLifecycle(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Begin(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	require.NoError(t, err)
	assert.True(t, mr.Exists("session:"+token))
	assert.Equal(t, time.Hour, mr.TTL("session:"+token))

	active, err := store.Active(ctx, token)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, store.End(ctx, token))
	active, err = store.Active(ctx, token)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Begin(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	active, err := store.Active(ctx, token)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRedisStoreInvalidTokens(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()

	active, err := store.Active(ctx, "not-a-token")
	require.NoError(t, err)
	assert.False(t, active)

	assert.ErrorIs(t, store.End(ctx, "*"), ErrInvalidToken)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Begin(context.Background())
	assert.Error(t, err)
	_, err = store.Active(context.Background(), uuid.NewString())
	assert.Error(t, err)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	first, err := store.Begin(ctx)
	require.NoError(t, err)
	second, err := store.Begin(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	active, _ := store.Active(ctx, first)
	assert.True(t, active)

	require.NoError(t, store.End(ctx, first))
	active, _ = store.Active(ctx, first)
	assert.False(t, active)
	active, _ = store.Active(ctx, second)
	assert.True(t, active)

	assert.ErrorIs(t, store.End(ctx, "garbage"), ErrInvalidToken)
	active, _ = store.Active(ctx, "garbage")
	assert.False(t, active)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := store.Begin(ctx)
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	active, _ := store.Active(ctx, stale)
	assert.True(t, active)

	now = now.Add(time.Second)
	active, _ = store.Active(ctx, stale)
	assert.False(t, active)

	expired, err := store.Begin(ctx)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = store.Begin(ctx)
	require.NoError(t, err)
	assert.NotContains(t, store.sessions, expired)
	assert.Len(t, store.sessions, 1)
}

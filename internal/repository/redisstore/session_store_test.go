package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client, 2*time.Hour), mr
}

func TestSessionLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "sess-1"))

	exists, err := store.Exists(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "sess-unknown")
	require.NoError(t, err)
	assert.False(t, exists)

	// Fresh session has no connection attached
	conn, err := store.GetConnection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, conn)
}

func TestAttachConnectionRotatesHandle(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "sess-1"))
	require.NoError(t, store.AttachConnection(ctx, "sess-1", "conn-a"))

	conn, err := store.GetConnection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "conn-a", conn)

	// Reconnect: a newer handle replaces the older one completely
	require.NoError(t, store.AttachConnection(ctx, "sess-1", "conn-b"))

	conn, err = store.GetConnection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "conn-b", conn)

	sid, err := store.FindByConnection(ctx, "conn-b")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sid)

	// The rotated-out handle no longer resolves
	_, err = store.FindByConnection(ctx, "conn-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAttachConnectionUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.AttachConnection(ctx, "nope", "conn-a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClearConnectionStaleGuard(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "sess-1"))
	require.NoError(t, store.AttachConnection(ctx, "sess-1", "conn-a"))
	require.NoError(t, store.AttachConnection(ctx, "sess-1", "conn-b"))

	// The old connection disconnecting late must not clear the new handle
	require.NoError(t, store.ClearConnection(ctx, "sess-1", "conn-a"))

	conn, err := store.GetConnection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "conn-b", conn)

	// Clearing the current handle takes the session offline
	require.NoError(t, store.ClearConnection(ctx, "sess-1", "conn-b"))

	conn, err = store.GetConnection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, conn)
}

func TestClearConnectionOnExpiredSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// No session state at all: clearing is a no-op, not an error
	require.NoError(t, store.ClearConnection(ctx, "gone", "conn-a"))
}

func TestSessionExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "sess-1"))

	mr.FastForward(3 * time.Hour)

	exists, err := store.Exists(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.GetConnection(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMarkQueryProcessedIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.MarkQueryProcessed(ctx, "q-1")
	require.NoError(t, err)
	assert.True(t, first)

	// Redelivery of the same query id
	again, err := store.MarkQueryProcessed(ctx, "q-1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := store.MarkQueryProcessed(ctx, "q-2")
	require.NoError(t, err)
	assert.True(t, other)
}

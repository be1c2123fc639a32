package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnimmelf/eike-storefront/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestStore_TokenRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	token, err := store.Token(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, token, "fresh session has no token")

	require.NoError(t, store.SetToken(ctx, "sess-1", "tok-abc"))

	token, err = store.Token(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)

	// Sessions are isolated.
	token, err = store.Token(ctx, "sess-2")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestStore_OrderError_CommitOnRead(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	orderErr := &domain.OrderError{Code: domain.ErrCodeInsufficientStock, Message: "Not enough stock"}
	require.NoError(t, store.SetOrderError(ctx, "sess-1", orderErr))

	// First read returns the error...
	got, err := store.TakeOrderError(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Not enough stock", got.Message)

	// ...and clears the slot so a refresh shows nothing.
	got, err = store.TakeOrderError(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_OrderError_EmptySlot(t *testing.T) {
	store, _ := setupTestStore(t)

	got, err := store.TakeOrderError(context.Background(), "sess-none")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_OrderError_SecondWriteReplacesFirst(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetOrderError(ctx, "sess-1", &domain.OrderError{Code: domain.ErrCodeOrderLimit, Message: "first"}))
	require.NoError(t, store.SetOrderError(ctx, "sess-1", &domain.OrderError{Code: domain.ErrCodeInsufficientStock, Message: "second"}))

	got, err := store.TakeOrderError(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.Message)
}

func TestStore_SubmitLock(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	ok, err := store.AcquireSubmitLock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second acquisition while in flight is rejected.
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other sessions are unaffected.
	ok, err = store.AcquireSubmitLock(ctx, "sess-2", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.ReleaseSubmitLock(ctx, "sess-1"))
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// The TTL bounds a lost release.
	mr.FastForward(time.Minute)
	ok, err = store.AcquireSubmitLock(ctx, "sess-1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_TokenExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "sess-1", "tok"))
	mr.FastForward(2 * time.Minute)

	token, err := store.Token(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, token)
}

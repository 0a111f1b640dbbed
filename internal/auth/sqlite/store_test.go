package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/artpar/portfolio/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := auth.User{ID: "u1", Email: "admin@example.com", PasswordHash: []byte("hash"), CreatedAt: time.Now()}
	require.NoError(t, store.CreateUser(ctx, user))

	err := store.CreateUser(ctx, auth.User{ID: "u2", Email: "admin@example.com", PasswordHash: []byte("x")})
	assert.ErrorIs(t, err, auth.ErrUserExists)

	got, err := store.UserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, []byte("hash"), got.PasswordHash)

	_, err = store.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestStore_Sessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateUser(ctx, auth.User{ID: "u1", Email: "a@b.co", PasswordHash: []byte("h"), CreatedAt: now}))
	require.NoError(t, store.CreateSession(ctx, auth.Session{Token: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, auth.Session{Token: "old", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(-time.Hour)}))

	s, err := store.Session(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", s.Email)
	assert.True(t, now.Add(time.Hour).Equal(s.ExpiresAt))

	n, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Session(ctx, "old")
	assert.ErrorIs(t, err, auth.ErrNoSession)

	require.NoError(t, store.DeleteSession(ctx, "live"))
	require.NoError(t, store.DeleteSession(ctx, "live"))
	_, err = store.Session(ctx, "live")
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestStore_Closed(t *testing.T) {
	store, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Session(context.Background(), "x")
	assert.ErrorIs(t, err, auth.ErrStoreClosed)
}

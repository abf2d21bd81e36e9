package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewSessionStore(client)
}

func newSession(userID, hash string) *domain.RefreshToken {
	now := time.Now().UTC()
	return &domain.RefreshToken{
		ID:        "rt-" + hash[:8],
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		IssuedAt:  now,
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()
	tok := newSession("u-1", "aaaaaaaa1111")

	require.NoError(t, store.Create(ctx, tok))

	got, err := store.GetByHash(ctx, tok.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, tok.TokenHash, got.TokenHash)
	assert.WithinDuration(t, tok.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessionStore_Create_Conflict(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()
	tok := newSession("u-1", "aaaaaaaa1111")

	require.NoError(t, store.Create(ctx, tok))
	err := store.Create(ctx, tok)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestSessionStore_Create_AlreadyExpired(t *testing.T) {
	_, store := newTestStore(t)
	tok := newSession("u-1", "aaaaaaaa1111")
	tok.ExpiresAt = time.Now().UTC().Add(-time.Minute)

	err := store.Create(context.Background(), tok)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSessionStore_GetByHash_Missing(t *testing.T) {
	_, store := newTestStore(t)

	_, err := store.GetByHash(context.Background(), "deadbeef0000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_Get_AfterTTL(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	tok := newSession("u-1", "aaaaaaaa1111")
	tok.ExpiresAt = time.Now().UTC().Add(time.Minute)

	require.NoError(t, store.Create(ctx, tok))
	mr.FastForward(2 * time.Minute)

	_, err := store.GetByHash(ctx, tok.TokenHash)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionStore_Delete_CountGate(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()
	tok := newSession("u-1", "aaaaaaaa1111")
	require.NoError(t, store.Create(ctx, tok))

	n, err := store.Delete(ctx, tok.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// A second delete of the same hash finds nothing.
	n, err = store.Delete(ctx, tok.TokenHash)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionStore_Delete_ConcurrentSingleWinner(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()
	tok := newSession("u-1", "aaaaaaaa1111")
	require.NoError(t, store.Create(ctx, tok))

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.Delete(ctx, tok.TokenHash)
			if err == nil && n == 1 {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	assert.Equal(t, 1, winners, "exactly one caller must observe the delete")
}

func TestSessionStore_DeleteByUserID(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession("u-1", "aaaaaaaa1111")))
	require.NoError(t, store.Create(ctx, newSession("u-1", "bbbbbbbb2222")))
	require.NoError(t, store.Create(ctx, newSession("u-2", "cccccccc3333")))

	n, err := store.DeleteByUserID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.GetByHash(ctx, "aaaaaaaa1111")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.GetByHash(ctx, "bbbbbbbb2222")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Other users' sessions survive.
	_, err = store.GetByHash(ctx, "cccccccc3333")
	assert.NoError(t, err)
}

func TestSessionStore_DeleteByUserID_NoSessions(t *testing.T) {
	_, store := newTestStore(t)

	n, err := store.DeleteByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

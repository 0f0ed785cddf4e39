package session_test

import (
	"context"
	"testing"
	"time"

	"gmp-logbook/internal/audit"
	"gmp-logbook/internal/session"
	"gmp-logbook/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return session.NewRedisStore(rdb), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := session.Session{Token: "tok", UserID: "U01", IssuedAt: start, LastSeen: start.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, sess, 15*time.Minute))

	assert.True(t, mr.Exists("logbook:sess:tok"))
	assert.Equal(t, 15*time.Minute, mr.TTL("logbook:sess:tok"))

	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "U01", got.UserID)
	assert.True(t, got.LastSeen.Equal(sess.LastSeen))

	require.NoError(t, store.Delete(ctx, "tok"))
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRedisStore_KeyExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.Session{Token: "tok", UserID: "U01"}, 15*time.Minute))
	mr.FastForward(15 * time.Minute)

	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, session.ErrNoSession)

	n, err := store.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManagerWithRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)
	db := testutil.NewDB(t)
	clock := testutil.NewClock(start)
	mgr := session.NewManager(db, store, audit.NewRecorder(db, clock.Now), 0, clock.Now)
	ctx := context.Background()

	token, _, err := mgr.Login(ctx, "U03", "qa123")
	require.NoError(t, err)

	clock.Advance(14 * time.Minute)
	mr.FastForward(14 * time.Minute)
	_, err = mgr.Current(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, mr.TTL("logbook:sess:"+token), "request refreshes key ttl")

	clock.Advance(15 * time.Minute)
	_, err = mgr.Current(ctx, token)
	assert.ErrorIs(t, err, session.ErrExpired)
	assert.False(t, mr.Exists("logbook:sess:"+token))
}

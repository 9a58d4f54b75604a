package lock_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/maplecart/storefront-api/internal/lock"
)

func newLocker(t *testing.T) (lock.TryLocker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.TryLocker{R: client, TTL: time.Minute}, mr
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "checkout:s1")
	require.ErrorIs(t, err, lock.ErrHeld)

	release()
	release2, err := locker.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)
	release2()
}

func TestAcquireIndependentKeys(t *testing.T) {
	locker, _ := newLocker(t)
	ctx := context.Background()

	r1, err := locker.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)
	defer r1()

	r2, err := locker.Acquire(ctx, "checkout:s2")
	require.NoError(t, err)
	defer r2()
}

func TestReleaseAfterExpiryDoesNotStealLock(t *testing.T) {
	locker, mr := newLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)

	// Expire the first holder's lock, let a second holder take over,
	// then release the stale handle.
	mr.FastForward(2 * time.Minute)
	release2, err := locker.Acquire(ctx, "checkout:s1")
	require.NoError(t, err)

	release()

	// The second holder's lock must still be in place.
	_, err = locker.Acquire(ctx, "checkout:s1")
	require.ErrorIs(t, err, lock.ErrHeld)
	release2()
}

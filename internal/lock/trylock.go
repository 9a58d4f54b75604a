package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld indicates the lock is already taken by another holder.
var ErrHeld = errors.New("lock: already held")

// TryLocker takes a short-lived Redis lock without waiting. A second
// acquisition attempt while the lock is held fails immediately with
// ErrHeld instead of queueing, which is what guards the
// one-submission-in-flight rule during checkout.
type TryLocker struct {
	R   *redis.Client
	TTL time.Duration
}

// Acquire attempts to take the lock for key. On success it returns a
// release function that is safe to call once, even after the TTL has
// expired the lock under us.
func (l TryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.R == nil {
		return nil, errors.New("lock: redis client not configured")
	}
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}
	release := func() {
		l.release(context.Background(), key, token)
	}
	return release, nil
}

func (l TryLocker) release(ctx context.Context, key, token string) {
	// Compare-and-delete so an expired lock taken over by another
	// holder is never released by us.
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	_ = l.R.Eval(ctx, script, []string{key}, token).Err()
}

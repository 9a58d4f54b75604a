package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store mirrors cart state into Redis as plain JSON documents, one per
// session. It is only written when a caller explicitly saves after a
// mutation; the in-memory cart never persists itself.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (st *Store) key(sessionID string) string { return "cart:" + sessionID }

func (st *Store) ttl() time.Duration {
	if st.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return st.TTL
}

// Save serialises the lines and writes them under the session key.
func (st *Store) Save(ctx context.Context, sessionID string, lines []Line) error {
	if st == nil || st.R == nil {
		return errors.New("cart store not configured")
	}
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return st.R.Set(ctx, st.key(sessionID), data, st.ttl()).Err()
}

// Load reads the persisted lines for a session. It reports whether the
// session key existed.
func (st *Store) Load(ctx context.Context, sessionID string) ([]Line, bool, error) {
	if st == nil || st.R == nil {
		return nil, false, errors.New("cart store not configured")
	}
	data, err := st.R.Get(ctx, st.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, false, err
	}
	return lines, true, nil
}

// Delete removes the persisted cart for a session.
func (st *Store) Delete(ctx context.Context, sessionID string) error {
	if st == nil || st.R == nil {
		return errors.New("cart store not configured")
	}
	return st.R.Del(ctx, st.key(sessionID)).Err()
}

package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates no completed order exists for the session.
var ErrNotFound = errors.New("order not found")

// Store persists the last completed order per session as a plain JSON
// document, the server-side analogue of the storefront's local storage
// mirror. Orders round-trip losslessly through Save and Load.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (st *Store) key(sessionID string) string { return "order:last:" + sessionID }

func (st *Store) ttl() time.Duration {
	if st.TTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return st.TTL
}

// Save writes the order under the session key, replacing any previous one.
func (st *Store) Save(ctx context.Context, sessionID string, ord Order) error {
	if st == nil || st.R == nil {
		return errors.New("order store not configured")
	}
	data, err := json.Marshal(ord)
	if err != nil {
		return err
	}
	return st.R.Set(ctx, st.key(sessionID), data, st.ttl()).Err()
}

// Load reads back the last completed order for the session.
func (st *Store) Load(ctx context.Context, sessionID string) (Order, error) {
	if st == nil || st.R == nil {
		return Order{}, errors.New("order store not configured")
	}
	data, err := st.R.Get(ctx, st.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	var ord Order
	if err := json.Unmarshal(data, &ord); err != nil {
		return Order{}, err
	}
	return ord, nil
}

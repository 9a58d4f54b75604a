package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Service keeps live carts per session and hydrates them from the Store
// on a cold start. Mutations happen in memory; persisting the result is
// the caller's explicit step via Store.Save.
type Service struct {
	Store *Store

	mu    sync.Mutex
	carts map[string]*Cart
}

// NewService constructs a session registry backed by the given store.
func NewService(store *Store) *Service {
	return &Service{Store: store, carts: make(map[string]*Cart)}
}

// Create registers a new empty cart session and returns its identifier.
func (s *Service) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.carts[id] = &Cart{}
	s.mu.Unlock()
	return id
}

// Get returns the cart for a session, loading the persisted mirror when
// the session is not yet in memory.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}
	if s.Store == nil {
		return nil, ErrNotFound
	}
	lines, found, err := s.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	c := NewCart(lines)
	s.carts[sessionID] = c
	return c, nil
}

// Add merges a line into the session cart and returns the new contents.
func (s *Service) Add(ctx context.Context, sessionID string, line Line) ([]Line, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(line); err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

// UpdateQty updates a line's quantity; zero removes the line.
func (s *Service) UpdateQty(ctx context.Context, sessionID, productID string, qty int) ([]Line, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQty(productID, qty); err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

// Remove deletes a line from the session cart.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) ([]Line, error) {
	c, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.Remove(productID); err != nil {
		return nil, err
	}
	return c.Lines(), nil
}

// Clear empties the in-memory cart for a session. The persisted mirror
// is the caller's to delete.
func (s *Service) Clear(sessionID string) {
	s.mu.Lock()
	s.carts[sessionID] = &Cart{}
	s.mu.Unlock()
}

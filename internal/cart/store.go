package cart

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// Store is the session-scoped cart state. Every mutation loads the
// current cart, applies the change in memory and writes it back.
// Persistence is best-effort: a failed write is logged and the mutation
// result is still returned, and a missing or corrupt saved cart is
// treated as an empty cart rather than an error.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Get returns the cart for a session, or an empty cart when none is
// stored or the stored state cannot be read.
func (s *Store) Get(ctx context.Context, sessionID string) *Cart {
	c, err := s.storage.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("cart: failed to load stored cart, starting empty")
		}
		return &Cart{}
	}
	return c
}

// AddItem adds qty units of a product to the session's cart. A
// non-positive qty leaves the cart unchanged.
func (s *Store) AddItem(ctx context.Context, sessionID string, item Item, qty int) *Cart {
	c := s.Get(ctx, sessionID)
	c.Add(item, qty)
	s.persist(ctx, sessionID, c)
	return c
}

// UpdateQuantity sets the quantity for a product; qty <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, productID string, qty int) *Cart {
	c := s.Get(ctx, sessionID)
	c.UpdateQuantity(productID, qty)
	s.persist(ctx, sessionID, c)
	return c
}

// RemoveItem deletes a product line from the session's cart.
func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) *Cart {
	c := s.Get(ctx, sessionID)
	c.Remove(productID)
	s.persist(ctx, sessionID, c)
	return c
}

// Clear empties the session's cart.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	if err := s.storage.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("cart: failed to clear stored cart")
	}
}

func (s *Store) persist(ctx context.Context, sessionID string, c *Cart) {
	if err := s.storage.Set(ctx, sessionID, c); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("cart: failed to persist cart")
	}
}

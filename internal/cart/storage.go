package cart

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage when no cart is saved for a session.
var ErrNotFound = errors.New("cart not found")

// Storage persists carts across requests, keyed by session id.
type Storage interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Set(ctx context.Context, sessionID string, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

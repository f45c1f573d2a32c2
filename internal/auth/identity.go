// Package auth resolves the current shopper identity for a request.
// Handlers trust the identity it returns and do not re-verify it.
package auth

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
)

var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the signed-in user as seen by the rest of the application.
type Identity struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	IsAdmin bool      `json:"is_admin"`
}

type identityKey struct{}

// WithIdentity attaches an identity to a request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity resolved for this request, or
// ErrUnauthenticated when nobody is signed in.
func IdentityFromContext(ctx context.Context) (*Identity, error) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok || id == nil {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

package auth

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// AuthCookie carries the session token of a signed-in user.
	AuthCookie = "sf_auth"
	// CartCookie carries the anonymous session id that keys the cart.
	// It is independent of sign-in state: signing out keeps the cart.
	CartCookie = "sf_session"
)

// ResolveIdentity looks up the session token from the auth cookie and, if
// valid, attaches the identity to the request context. Requests without a
// valid session pass through anonymously.
func ResolveIdentity(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AuthCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// EnsureCartSession issues a cart session cookie when the request does
// not carry one yet.
func EnsureCartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(CartCookie); err == nil {
			next.ServeHTTP(w, r)
			return
		}

		sid, err := uuid.NewV4()
		if err != nil {
			log.Error().Err(err).Msg("auth: failed to generate cart session id")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		cookie := &http.Cookie{
			Name:     CartCookie,
			Value:    sid.String(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		http.SetCookie(w, cookie)
		r.AddCookie(cookie)
		next.ServeHTTP(w, r)
	})
}

// CartSessionID returns the cart session id for a request, or "" when
// the cookie is missing.
func CartSessionID(r *http.Request) string {
	cookie, err := r.Cookie(CartCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := IdentityFromContext(r.Context()); err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests whose identity is missing or not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := IdentityFromContext(r.Context())
		if err != nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if !id.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

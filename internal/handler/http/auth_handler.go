package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/suburp/storefront/internal/auth"
	"github.com/suburp/storefront/internal/user"
)

type SignUpRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Password    string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type AuthHandler struct {
	users    user.Service
	sessions auth.SessionStore
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, sessions auth.SessionStore) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/signup", h.handleSignUp)
	router.Post("/auth/signin", h.handleSignIn)
	router.Post("/auth/signout", h.handleSignOut)
	router.Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		if !respondWithValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	u, err := h.users.Register(r.Context(), req.Name, req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrPhoneExists) {
			respondWithError(w, http.StatusConflict, "Phone number already registered")
			return
		}
		log.Error().Err(err).Msg("Failed to register user via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.startSession(w, r, u)
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		if !respondWithValidationError(w, err) {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid phone number or password")
			return
		}
		log.Error().Err(err).Msg("Failed to authenticate user via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.startSession(w, r, u)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, u *user.User) {
	identity := auth.Identity{ID: u.ID, Name: u.Name, IsAdmin: u.IsAdmin}

	token, err := h.sessions.Create(r.Context(), identity)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("Failed to create session")
		respondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AuthCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, identity)
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.AuthCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Warn().Err(err).Msg("Failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondWithJSON(w, http.StatusOK, id)
}

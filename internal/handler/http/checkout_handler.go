package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/suburp/storefront/internal/auth"
	"github.com/suburp/storefront/internal/checkout"
	"github.com/suburp/storefront/internal/order"
)

type PlaceOrderRequest struct {
	ShippingAddress order.Address `json:"shipping_address"`
	PaymentMethod   string        `json:"payment_method"`
}

type CheckoutHandler struct {
	svc *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/checkout", h.handlePlaceOrder)
	router.Get("/checkout/success", h.handleSuccess)
}

func (h *CheckoutHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		// Mirror the login redirect of the storefront UI: the client is
		// told where to go and where to come back to.
		respondWithJSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "Authentication required",
			"redirect": "/login?redirect=/checkout",
		})
		return
	}

	var req PlaceOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), auth.CartSessionID(r), id.ID, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondWithJSON(w, http.StatusConflict, map[string]string{
				"error":    "Cart is empty",
				"redirect": "/cart",
			})
		case errors.Is(err, checkout.ErrInvalidAddress):
			respondWithError(w, http.StatusBadRequest, "All shipping address fields are required")
		case errors.Is(err, checkout.ErrOrderCreationFailed):
			respondWithError(w, http.StatusInternalServerError, "There was an error processing your order. Please try again.")
		default:
			log.Error().Err(err).Msg("Failed to place order")
			respondWithError(w, http.StatusInternalServerError, "There was an error processing your order. Please try again.")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

// handleSuccess is the confirmation view guard. Visiting it with a
// non-empty cart means checkout did not happen in this session, so the
// client is sent back to the cart.
func (h *CheckoutHandler) handleSuccess(w http.ResponseWriter, r *http.Request) {
	if !h.svc.ConfirmationAllowed(r.Context(), auth.CartSessionID(r)) {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Thank you for your order. We've received your order and will begin processing it right away.",
	})
}

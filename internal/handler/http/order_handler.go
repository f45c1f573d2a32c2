package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/suburp/storefront/internal/auth"
	"github.com/suburp/storefront/internal/order"
)

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type StatusUpdateResponse struct {
	Order            *order.Order `json:"order"`
	NotificationSent bool         `json:"notification_sent"`
	Warning          string       `json:"warning,omitempty"`
}

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleGetMyOrders)
}

func (h *OrderHandler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/orders", h.handleGetAllOrders)
	router.Put("/orders/{id}/status", h.handleUpdateStatus)
	router.Post("/orders/{id}/notify", h.handleSendNotification)
}

func (h *OrderHandler) handleGetMyOrders(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orders, err := h.svc.GetByUserID(r.Context(), id.ID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	orderID, err := uuid.FromString(idParam)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var req UpdateStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil && !errors.Is(err, order.ErrNotificationFailed) {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "Unknown order status")
		case errors.Is(err, order.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		default:
			log.Error().Err(err).Msg("Failed to update order status via service")
			respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	// The status change is persisted at this point; a notification
	// failure is reported alongside it, not instead of it.
	resp := StatusUpdateResponse{Order: o, NotificationSent: true}
	if errors.Is(err, order.ErrNotificationFailed) {
		resp.NotificationSent = false
		resp.Warning = "Status updated, but the notification could not be delivered"
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	orderID, err := uuid.FromString(idParam)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	err = h.svc.Notify(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrNotificationFailed):
			respondWithError(w, http.StatusBadGateway, "Failed to send notification")
		default:
			log.Error().Err(err).Msg("Failed to send notification via service")
			respondWithError(w, http.StatusInternalServerError, "Failed to send notification")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification sent"})
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/suburp/storefront/internal/auth"
	"github.com/suburp/storefront/internal/cart"
	"github.com/suburp/storefront/internal/product"
)

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items    []cart.Item     `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartHandler struct {
	carts    *cart.Store
	products product.Service
	validate *validator.Validate
}

func NewCartHandler(carts *cart.Store, products product.Service) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Put("/cart/items/{productID}", h.handleUpdateQuantity)
	router.Delete("/cart/items/{productID}", h.handleRemoveItem)
	router.Delete("/cart", h.handleClearCart)
}

func cartResponse(c *cart.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponse{Items: items, Subtotal: c.Subtotal()}
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c := h.carts.Get(r.Context(), auth.CartSessionID(r))
	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest

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

	productID, err := uuid.FromString(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Msg("Failed to fetch product for cart add")
		respondWithError(w, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	item := cart.Item{
		ProductID: p.ID.String(),
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
	}
	c := h.carts.AddItem(r.Context(), auth.CartSessionID(r), item, req.Quantity)

	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	var req UpdateQuantityRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	c := h.carts.UpdateQuantity(r.Context(), auth.CartSessionID(r), productID, req.Quantity)
	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "Product id is required")
		return
	}

	c := h.carts.RemoveItem(r.Context(), auth.CartSessionID(r), productID)
	respondWithJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	h.carts.Clear(r.Context(), auth.CartSessionID(r))
	respondWithJSON(w, http.StatusOK, cartResponse(&cart.Cart{}))
}

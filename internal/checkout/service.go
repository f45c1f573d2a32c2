// Package checkout converts a session's cart into a persisted order.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/suburp/storefront/internal/cart"
	"github.com/suburp/storefront/internal/order"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidAddress      = errors.New("invalid shipping address")
	ErrOrderCreationFailed = errors.New("failed to create order")
)

// taxRate is the fixed 18% surcharge applied to the cart subtotal.
// Shipping is always free.
var taxRate = decimal.NewFromFloat(0.18)

const (
	PaymentCashOnDelivery = "Cash on Delivery"
	PaymentOnline         = "Online Payment"
)

// PaymentLabel maps the selected payment option to the label stored on
// the order. Payment is a label only; no gateway is involved.
func PaymentLabel(option string) string {
	if option == "cod" {
		return PaymentCashOnDelivery
	}
	return PaymentOnline
}

type Service struct {
	carts    *cart.Store
	orders   order.Repository
	validate *validator.Validate
}

func NewService(carts *cart.Store, orders order.Repository) *Service {
	return &Service{
		carts:    carts,
		orders:   orders,
		validate: validator.New(),
	}
}

// PlaceOrder validates the session's cart and shipping address, snapshots
// the cart into an order and persists it. The cart is cleared only after
// the order is stored, so a failed submission can be retried with the
// cart intact. Order totals are computed once here and never recomputed
// from live product prices.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, userID uuid.UUID, addr order.Address, paymentOption string) (*order.Order, error) {
	c := s.carts.Get(ctx, sessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := s.validate.Struct(addr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	items := make([]order.Item, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, order.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	subtotal := c.Subtotal()
	total := subtotal.Add(subtotal.Mul(taxRate))

	o := &order.Order{
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          order.StatusPending,
		ShippingAddress: addr,
		PaymentMethod:   PaymentLabel(paymentOption),
	}

	if _, err := s.orders.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("checkout: failed to create order")
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	s.carts.Clear(ctx, sessionID)

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Str("total", total.String()).Msg("checkout: order placed")
	return o, nil
}

// ConfirmationAllowed reports whether the confirmation view may render:
// it refuses while the session cart is non-empty, which blocks direct
// navigation to the success page outside a completed checkout.
func (s *Service) ConfirmationAllowed(ctx context.Context, sessionID string) bool {
	return s.carts.Get(ctx, sessionID).IsEmpty()
}

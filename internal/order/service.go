package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/suburp/storefront/internal/notify"
)

var (
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrNotificationFailed marks a failure to deliver the status message.
	// When UpdateStatus returns it, the status change itself has been
	// persisted; only the outbound text was lost.
	ErrNotificationFailed = errors.New("notification delivery failed")
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetAll(ctx context.Context) ([]Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) (*Order, error)
	Notify(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo   Repository
	sender notify.Sender
}

func NewService(repo Repository, sender notify.Sender) Service {
	return &service{repo: repo, sender: sender}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) GetAll(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *service) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus writes newStatus to the order and sends the shopper a text
// about the change. The write is unconditional last-write-wins; any of
// the five statuses may be set from any current status. When the status
// is saved but the text cannot be delivered, the updated order is
// returned together with ErrNotificationFailed so the caller can report
// the two outcomes separately.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) (*Order, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order not found for status update")
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		// The status change is already committed; without the order we
		// cannot address the text, so only the notification is lost.
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to reload order after status update")
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order status updated")

	message := fmt.Sprintf("Your order #%s has been %s. Thank you for shopping with SuBurp!", o.ID, o.Status)
	if err := s.sender.Send(ctx, o.ShippingAddress.Phone, message); err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: status saved but notification failed")
		return o, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return o, nil
}

// Notify resends a status message for an order on demand, using its
// current status and shipping name.
func (s *service) Notify(ctx context.Context, orderID uuid.UUID) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order for notification")
		return fmt.Errorf("service: failed to fetch order for notification: %w", err)
	}

	message := fmt.Sprintf("Hello %s, your order #%s is %s. Thank you for shopping with SuBurp!",
		o.ShippingAddress.FullName, o.ID, o.Status)
	if err := s.sender.Send(ctx, o.ShippingAddress.Phone, message); err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to send notification")
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return nil
}

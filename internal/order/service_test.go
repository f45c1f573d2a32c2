package order_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suburp/storefront/internal/order"
)

type mockRepository struct {
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
	updateCalls      int
}

func (m *mockRepository) Create(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	return uuid.Nil, errors.New("not implemented")
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	m.updateCalls++
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, orderID, newStatus)
	}
	return nil
}

type mockSender struct {
	sendFunc func(ctx context.Context, phone, message string) error
	phones   []string
	messages []string
}

func (m *mockSender) Send(ctx context.Context, phone, message string) error {
	m.phones = append(m.phones, phone)
	m.messages = append(m.messages, message)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, phone, message)
	}
	return nil
}

func testOrder(id uuid.UUID, status order.Status) *order.Order {
	return &order.Order{
		ID:     id,
		UserID: uuid.Must(uuid.NewV4()),
		Items: []order.Item{
			{ProductID: "p1", Name: "Samosa", Price: decimal.RequireFromString("5.00"), Quantity: 2},
		},
		Total:  decimal.RequireFromString("11.80"),
		Status: status,
		ShippingAddress: order.Address{
			FullName:      "Asha Rao",
			StreetAddress: "12 MG Road",
			City:          "Bengaluru",
			State:         "Karnataka",
			PostalCode:    "560001",
			Country:       "India",
			Phone:         "+919812345678",
		},
		PaymentMethod: "Cash on Delivery",
	}
}

func TestService_UpdateStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name             string
		currentStatus    order.Status
		newStatus        order.Status
		updateStatusFunc func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
		wantErrIs        error
		wantUpdateCalls  int
	}{
		{
			name:            "pending_to_processing",
			currentStatus:   order.StatusPending,
			newStatus:       order.StatusProcessing,
			wantUpdateCalls: 1,
		},
		{
			// Any status is reachable from any status; only membership in
			// the enumeration is checked.
			name:            "pending_straight_to_delivered",
			currentStatus:   order.StatusPending,
			newStatus:       order.StatusDelivered,
			wantUpdateCalls: 1,
		},
		{
			name:            "delivered_back_to_pending",
			currentStatus:   order.StatusDelivered,
			newStatus:       order.StatusPending,
			wantUpdateCalls: 1,
		},
		{
			name:            "unknown_status_rejected",
			currentStatus:   order.StatusPending,
			newStatus:       order.Status("misplaced"),
			wantErrIs:       order.ErrInvalidStatus,
			wantUpdateCalls: 0,
		},
		{
			name:          "order_not_found",
			currentStatus: order.StatusPending,
			newStatus:     order.StatusShipped,
			updateStatusFunc: func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
				return order.ErrNotFound
			},
			wantErrIs:       order.ErrNotFound,
			wantUpdateCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
					return testOrder(id, tt.newStatus), nil
				},
				updateStatusFunc: tt.updateStatusFunc,
			}
			sender := &mockSender{}
			svc := order.NewService(repo, sender)

			o, err := svc.UpdateStatus(context.Background(), orderID, tt.newStatus)

			assert.Equal(t, tt.wantUpdateCalls, repo.updateCalls)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Empty(t, sender.messages)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, o)
			assert.Equal(t, tt.newStatus, o.Status)
			require.Len(t, sender.messages, 1)
			assert.Equal(t,
				fmt.Sprintf("Your order #%s has been %s. Thank you for shopping with SuBurp!", orderID, tt.newStatus),
				sender.messages[0])
			assert.Equal(t, "+919812345678", sender.phones[0])
		})
	}
}

// The status change must survive a failed notification.
func TestService_UpdateStatus_NotificationFailureKeepsStatus(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())
	repo := &mockRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return testOrder(id, order.StatusShipped), nil
		},
	}
	sender := &mockSender{
		sendFunc: func(ctx context.Context, phone, message string) error {
			return errors.New("gateway returned status 502")
		},
	}
	svc := order.NewService(repo, sender)

	o, err := svc.UpdateStatus(context.Background(), orderID, order.StatusShipped)

	assert.Equal(t, 1, repo.updateCalls, "status write must happen before notification")
	assert.ErrorIs(t, err, order.ErrNotificationFailed)
	require.NotNil(t, o, "the updated order is returned even when the text fails")
	assert.Equal(t, order.StatusShipped, o.Status)
}

func TestService_Notify(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	t.Run("uses_current_status_and_name", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return testOrder(id, order.StatusProcessing), nil
			},
		}
		sender := &mockSender{}
		svc := order.NewService(repo, sender)

		err := svc.Notify(context.Background(), orderID)

		require.NoError(t, err)
		require.Len(t, sender.messages, 1)
		assert.Equal(t,
			fmt.Sprintf("Hello Asha Rao, your order #%s is processing. Thank you for shopping with SuBurp!", orderID),
			sender.messages[0])
	})

	t.Run("order_not_found", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
		}
		sender := &mockSender{}
		svc := order.NewService(repo, sender)

		err := svc.Notify(context.Background(), orderID)

		assert.ErrorIs(t, err, order.ErrNotFound)
		assert.Empty(t, sender.messages)
	})

	t.Run("delivery_failure", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return testOrder(id, order.StatusPending), nil
			},
		}
		sender := &mockSender{
			sendFunc: func(ctx context.Context, phone, message string) error {
				return errors.New("timeout")
			},
		}
		svc := order.NewService(repo, sender)

		err := svc.Notify(context.Background(), orderID)

		assert.ErrorIs(t, err, order.ErrNotificationFailed)
	})
}

func TestStatus_IsValid(t *testing.T) {
	valid := []order.Status{
		order.StatusPending,
		order.StatusProcessing,
		order.StatusShipped,
		order.StatusDelivered,
		order.StatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "status %s", s)
	}

	assert.False(t, order.Status("").IsValid())
	assert.False(t, order.Status("returned").IsValid())
}

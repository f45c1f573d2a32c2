package checkout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suburp/storefront/internal/cart"
	"github.com/suburp/storefront/internal/checkout"
	"github.com/suburp/storefront/internal/order"
)

type memStorage struct {
	carts map[string]*cart.Cart
}

func newMemStorage() *memStorage {
	return &memStorage{carts: make(map[string]*cart.Cart)}
}

func (m *memStorage) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, ok := m.carts[sessionID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (m *memStorage) Set(ctx context.Context, sessionID string, c *cart.Cart) error {
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	m.carts[sessionID] = &cp
	return nil
}

func (m *memStorage) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type mockOrderRepository struct {
	createFunc  func(ctx context.Context, o *order.Order) (uuid.UUID, error)
	createCalls int
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	m.createCalls++
	if m.createFunc != nil {
		return m.createFunc(ctx, o)
	}
	id, _ := uuid.NewV4()
	o.ID = id
	return id, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return nil, order.ErrNotFound
}

func (m *mockOrderRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return nil, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	return nil
}

func validAddress() order.Address {
	return order.Address{
		FullName:      "Asha Rao",
		StreetAddress: "12 MG Road",
		City:          "Bengaluru",
		State:         "Karnataka",
		PostalCode:    "560001",
		Country:       "India",
		Phone:         "+919812345678",
	}
}

func cartItem(id, name, price string, qty int) cart.Item {
	return cart.Item{
		ProductID: id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func seedCart(t *testing.T, storage *memStorage, sessionID string, items ...cart.Item) *cart.Store {
	t.Helper()
	store := cart.NewStore(storage)
	for _, it := range items {
		store.AddItem(context.Background(), sessionID, it, it.Quantity)
	}
	return store
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	repo := &mockOrderRepository{}
	carts := cart.NewStore(newMemStorage())
	svc := checkout.NewService(carts, repo)

	_, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), validAddress(), "cod")

	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Zero(t, repo.createCalls, "empty cart must never reach the order store")
}

func TestService_PlaceOrder_InvalidAddress(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *order.Address)
	}{
		{"missing_full_name", func(a *order.Address) { a.FullName = "" }},
		{"missing_street", func(a *order.Address) { a.StreetAddress = "" }},
		{"missing_city", func(a *order.Address) { a.City = "" }},
		{"missing_state", func(a *order.Address) { a.State = "" }},
		{"missing_postal_code", func(a *order.Address) { a.PostalCode = "" }},
		{"missing_country", func(a *order.Address) { a.Country = "" }},
		{"missing_phone", func(a *order.Address) { a.Phone = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			carts := seedCart(t, storage, "s1", cartItem("p1", "Samosa", "5.00", 2))
			repo := &mockOrderRepository{}
			svc := checkout.NewService(carts, repo)

			addr := validAddress()
			tt.mutate(&addr)

			_, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), addr, "cod")

			assert.ErrorIs(t, err, checkout.ErrInvalidAddress)
			assert.Zero(t, repo.createCalls)
		})
	}
}

func TestService_PlaceOrder_TotalIncludesTax(t *testing.T) {
	storage := newMemStorage()
	carts := seedCart(t, storage, "s1", cartItem("p1", "Samosa", "50.00", 2))
	var created *order.Order
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
			created = o
			id, _ := uuid.NewV4()
			o.ID = id
			return id, nil
		},
	}
	svc := checkout.NewService(carts, repo)

	o, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), validAddress(), "cod")

	require.NoError(t, err)
	require.NotNil(t, created)
	// subtotal 100.00 + 18% tax, free shipping
	assert.Equal(t, "118.00", o.Total.StringFixed(2))
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, checkout.PaymentCashOnDelivery, o.PaymentMethod)
}

func TestService_PlaceOrder_SnapshotsCartItems(t *testing.T) {
	storage := newMemStorage()
	carts := seedCart(t, storage, "s1",
		cartItem("p1", "Samosa", "5.00", 2),
		cartItem("p2", "Kebab", "10.00", 1),
	)
	repo := &mockOrderRepository{}
	svc := checkout.NewService(carts, repo)

	o, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), validAddress(), "cod")

	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, "Samosa", o.Items[0].Name)
	assert.Equal(t, "5.00", o.Items[0].Price.StringFixed(2))
	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestService_PlaceOrder_PaymentLabel(t *testing.T) {
	tests := []struct {
		option string
		want   string
	}{
		{"cod", checkout.PaymentCashOnDelivery},
		{"card", checkout.PaymentOnline},
		{"", checkout.PaymentOnline},
	}

	for _, tt := range tests {
		t.Run("option_"+tt.option, func(t *testing.T) {
			assert.Equal(t, tt.want, checkout.PaymentLabel(tt.option))
		})
	}
}

func TestService_PlaceOrder_SuccessClearsCart(t *testing.T) {
	storage := newMemStorage()
	carts := seedCart(t, storage, "s1", cartItem("p1", "Samosa", "5.00", 2))
	repo := &mockOrderRepository{}
	svc := checkout.NewService(carts, repo)

	_, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), validAddress(), "cod")

	require.NoError(t, err)
	c := carts.Get(context.Background(), "s1")
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal().IsZero())
	assert.True(t, svc.ConfirmationAllowed(context.Background(), "s1"))
}

func TestService_PlaceOrder_FailureLeavesCartIntact(t *testing.T) {
	storage := newMemStorage()
	carts := seedCart(t, storage, "s1", cartItem("p1", "Samosa", "5.00", 2))
	repo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
			return uuid.Nil, errors.New("connection refused")
		},
	}
	svc := checkout.NewService(carts, repo)

	_, err := svc.PlaceOrder(context.Background(), "s1", uuid.Must(uuid.NewV4()), validAddress(), "cod")

	assert.ErrorIs(t, err, checkout.ErrOrderCreationFailed)
	c := carts.Get(context.Background(), "s1")
	assert.Len(t, c.Items, 1, "a failed submission must be retryable with the cart intact")
}

func TestService_ConfirmationAllowed(t *testing.T) {
	storage := newMemStorage()
	carts := cart.NewStore(storage)
	svc := checkout.NewService(carts, &mockOrderRepository{})
	ctx := context.Background()

	assert.True(t, svc.ConfirmationAllowed(ctx, "s1"), "empty cart may see the confirmation view")

	carts.AddItem(ctx, "s1", cartItem("p1", "Samosa", "5.00", 1), 1)
	assert.False(t, svc.ConfirmationAllowed(ctx, "s1"), "non-empty cart must be sent back to the cart view")
}

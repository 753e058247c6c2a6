package service

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listCall struct {
	status string
	limit  int
}

type fakeOrderStore struct {
	orders    map[int64]*models.Order
	items     map[int64][]models.OrderItem
	list      []models.Order
	listCalls []listCall
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID int64, status string) error {
	if o, ok := f.orders[orderID]; ok {
		o.Status = status
	}
	return nil
}

func (f *fakeOrderStore) ListOrders(_ context.Context, status string, limit int) ([]models.Order, error) {
	f.listCalls = append(f.listCalls, listCall{status: status, limit: limit})
	return f.list, nil
}

func orderTestStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: map[int64]*models.Order{7: {
			ID:     7,
			Status: models.OrderStatusNew,
			Total:  decimal.RequireFromString("259.90"),
		}},
		items: map[int64][]models.OrderItem{7: {
			{ProductID: 1, ProductName: "Anel Ouro", Quantity: 2},
		}},
	}
}

func TestGetOrder(t *testing.T) {
	svc := NewOrderService(orderTestStore(), &fakePublisher{})

	order, items, err := svc.GetOrder(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
	require.Len(t, items, 1)
	assert.Equal(t, "Anel Ouro", items[0].ProductName)
}

func TestGetOrderNotFound(t *testing.T) {
	svc := NewOrderService(orderTestStore(), &fakePublisher{})

	_, _, err := svc.GetOrder(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	st := orderTestStore()
	events := &fakePublisher{}
	svc := NewOrderService(st, events)

	order, err := svc.SetStatus(context.Background(), 7, models.OrderStatusPacking)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPacking, order.Status)
	assert.Equal(t, models.OrderStatusPacking, st.orders[7].Status)

	require.Len(t, events.statusChanged, 1)
	assert.Equal(t, models.OrderStatusNew, events.statusChanged[0].From)
	assert.Equal(t, models.OrderStatusPacking, events.statusChanged[0].To)
	assert.Empty(t, events.cancelled)
}

func TestSetStatusUnknownIgnored(t *testing.T) {
	st := orderTestStore()
	events := &fakePublisher{}
	svc := NewOrderService(st, events)

	order, err := svc.SetStatus(context.Background(), 7, "Faturado")
	require.NoError(t, err)

	// Unknown values are dropped silently, not rejected.
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Equal(t, models.OrderStatusNew, st.orders[7].Status)
	assert.Empty(t, events.statusChanged)
}

func TestSetStatusUnchangedIsNoOp(t *testing.T) {
	st := orderTestStore()
	events := &fakePublisher{}
	svc := NewOrderService(st, events)

	order, err := svc.SetStatus(context.Background(), 7, models.OrderStatusNew)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Empty(t, events.statusChanged)
}

func TestSetStatusCancelled(t *testing.T) {
	st := orderTestStore()
	st.orders[7].Status = models.OrderStatusPaid
	events := &fakePublisher{}
	svc := NewOrderService(st, events)

	_, err := svc.SetStatus(context.Background(), 7, models.OrderStatusCancelled)
	require.NoError(t, err)

	require.Len(t, events.statusChanged, 1)
	require.Len(t, events.cancelled, 1)
	assert.Equal(t, models.OrderStatusPaid, events.cancelled[0].PreviousStatus)
}

func TestSetStatusOrderNotFound(t *testing.T) {
	svc := NewOrderService(orderTestStore(), &fakePublisher{})

	_, err := svc.SetStatus(context.Background(), 42, models.OrderStatusPaid)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListOrders(t *testing.T) {
	st := orderTestStore()
	st.list = []models.Order{{ID: 9}, {ID: 7}}
	svc := NewOrderService(st, &fakePublisher{})

	orders, err := svc.ListOrders(context.Background(), "  Paid ")
	require.NoError(t, err)

	assert.Len(t, orders, 2)
	require.Len(t, st.listCalls, 1)
	assert.Equal(t, listCall{status: "Paid", limit: 300}, st.listCalls[0])
}

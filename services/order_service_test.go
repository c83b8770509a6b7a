package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"restaurant/configs"
	"restaurant/entity"
	"restaurant/events"
	"restaurant/pkg/testdb"
	"restaurant/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error { return errors.New("broker down") }
func (failingPublisher) Close() error                                { return nil }

type orderFixture struct {
	db   *gorm.DB
	svc  *OrderService
	rec  *recorder
	user entity.User
	menu map[string]entity.MenuItem
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := testdb.Open(t)
	require.NoError(t, configs.SeedMenu(db, zap.NewNop()))

	user := entity.User{Name: "Cust", Email: "cust@example.com", Password: "x", Role: entity.RoleCustomer}
	require.NoError(t, db.Create(&user).Error)

	var items []entity.MenuItem
	require.NoError(t, db.Find(&items).Error)
	menu := make(map[string]entity.MenuItem, len(items))
	for _, it := range items {
		menu[it.Name] = it
	}

	rec := &recorder{}
	svc := NewOrderService(db,
		repository.NewOrderRepository(db),
		repository.NewMenuRepository(db),
		DefaultPricing(), 30, rec, zap.NewNop())
	return &orderFixture{db: db, svc: svc, rec: rec, user: user, menu: menu}
}

func (f *orderFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *orderFixture) line(name string, qty int) OrderLineInput {
	return OrderLineInput{MenuItemID: f.menu[name].ID, Quantity: qty}
}

func strPtr(s string) *string { return &s }

func TestCreateOrderPricesFromMenu(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	clientTotal := decimal.RequireFromString("1.00")
	res, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items: []OrderLineInput{
			f.line("Margherita Pizza", 2),
			{MenuItemID: f.menu["Lemonade"].ID, Quantity: 1, SpecialInstructions: "  no ice "},
		},
		ClientTotal: &clientTotal,
		OrderType:   entity.OrderTypeDineIn,
		TableNumber: strPtr(" 12 "),
		Notes:       "window seat",
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)

	// 2*12.99 + 3.49 = 29.47, tax 2.50
	assert.Equal(t, "29.47", res.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", res.Totals.Tax.StringFixed(2))
	assert.Equal(t, "31.97", res.Totals.Total.StringFixed(2))

	detail, err := f.svc.Detail(ctx, f.user.ID, entity.RoleCustomer, res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, detail.Status)
	assert.Equal(t, "31.97", detail.TotalAmount.StringFixed(2))
	assert.Equal(t, 30, detail.EstimatedTime)
	require.NotNil(t, detail.TableNumber)
	assert.Equal(t, "12", *detail.TableNumber)
	assert.Nil(t, detail.DeliveryAddress)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Margherita Pizza", detail.Items[0].Name)
	assert.Equal(t, "25.98", detail.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, "no ice", detail.Items[1].SpecialInstructions)

	got := f.rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, events.OrderCreated, got[0].Type)
	assert.Equal(t, res.ID, got[0].OrderID)
	assert.Equal(t, f.user.ID, got[0].UserID)
}

func TestCreateDeliveryOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Classic Burger", 1)},
		OrderType: entity.OrderTypeDelivery,
	})
	assert.ErrorIs(t, err, ErrDeliveryAddressRequired)

	_, err = f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:           []OrderLineInput{f.line("Classic Burger", 1)},
		OrderType:       entity.OrderTypeDelivery,
		DeliveryAddress: strPtr("   "),
	})
	assert.ErrorIs(t, err, ErrDeliveryAddressRequired)
	assert.Zero(t, f.count(t, &entity.Order{}))

	res, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:           []OrderLineInput{f.line("Classic Burger", 1)},
		OrderType:       entity.OrderTypeDelivery,
		TableNumber:     strPtr("4"),
		DeliveryAddress: strPtr("1 Main St"),
	})
	require.NoError(t, err)
	// 13.49 + 1.15 + 3.99
	assert.Equal(t, "3.99", res.Totals.DeliveryFee.StringFixed(2))
	assert.Equal(t, "18.63", res.Totals.Total.StringFixed(2))

	var o entity.Order
	require.NoError(t, f.db.First(&o, res.ID).Error)
	assert.Nil(t, o.TableNumber)
	require.NotNil(t, o.DeliveryAddress)
	assert.Equal(t, "1 Main St", *o.DeliveryAddress)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	soldOut := entity.MenuItem{
		Name:        "Seasonal Pie",
		Price:       decimal.RequireFromString("7.50"),
		IsAvailable: false,
		CategoryID:  f.menu["Tiramisu"].CategoryID,
	}
	require.NoError(t, f.db.Create(&soldOut).Error)
	f.menu[soldOut.Name] = soldOut

	tests := []struct {
		name string
		in   CreateOrderInput
		want error
	}{
		{"empty", CreateOrderInput{OrderType: entity.OrderTypeDineIn}, ErrEmptyOrder},
		{"bad type", CreateOrderInput{Items: []OrderLineInput{f.line("Espresso", 1)}, OrderType: "drive_thru"}, ErrInvalidOrderType},
		{"zero quantity", CreateOrderInput{Items: []OrderLineInput{f.line("Espresso", 0)}, OrderType: entity.OrderTypeTakeaway}, ErrInvalidQuantity},
		{"unknown item", CreateOrderInput{Items: []OrderLineInput{{MenuItemID: 9999, Quantity: 1}}, OrderType: entity.OrderTypeTakeaway}, ErrUnknownMenuItem},
		{"unavailable", CreateOrderInput{Items: []OrderLineInput{f.line("Espresso", 1), f.line("Seasonal Pie", 1)}, OrderType: entity.OrderTypeTakeaway}, ErrItemUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.user.ID, &tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}

	assert.Zero(t, f.count(t, &entity.Order{}))
	assert.Zero(t, f.count(t, &entity.OrderItem{}))
	assert.Empty(t, f.rec.all())
}

func TestCreateOrderRollsBackOnLineFailure(t *testing.T) {
	f := newOrderFixture(t)

	require.NoError(t, f.db.Callback().Create().Before("gorm:create").
		Register("test:fail_order_items", func(tx *gorm.DB) {
			if tx.Statement.Table == "order_items" {
				_ = tx.AddError(errors.New("disk full"))
			}
		}))

	_, err := f.svc.Create(context.Background(), f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Garlic Bread", 1), f.line("Espresso", 2)},
		OrderType: entity.OrderTypeTakeaway,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Zero(t, f.count(t, &entity.Order{}))
	assert.Zero(t, f.count(t, &entity.OrderItem{}))
	assert.Empty(t, f.rec.all())
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	in := &CreateOrderInput{
		Items:          []OrderLineInput{f.line("Caesar Salad", 1)},
		OrderType:      entity.OrderTypeTakeaway,
		IdempotencyKey: "k-1",
	}
	first, err := f.svc.Create(ctx, f.user.ID, in)
	require.NoError(t, err)

	again, err := f.svc.Create(ctx, f.user.ID, in)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, first.Totals.Total.Equal(again.Totals.Total))

	assert.EqualValues(t, 1, f.count(t, &entity.Order{}))
	assert.EqualValues(t, 1, f.count(t, &entity.OrderItem{}))
	assert.Len(t, f.rec.all(), 1)

	// another user may reuse the same key
	other := entity.User{Name: "Other", Email: "other@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&other).Error)
	res, err := f.svc.Create(ctx, other.ID, in)
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.NotEqual(t, first.ID, res.ID)
}

func TestListForUser(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	empty, err := f.svc.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Tiramisu", 1)},
		OrderType: entity.OrderTypeTakeaway,
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Margherita Pizza", 1), f.line("Classic Burger", 2)},
		OrderType: entity.OrderTypeDineIn,
	})
	require.NoError(t, err)

	list, err := f.svc.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.NotNil(t, list[0].Items)
	assert.Equal(t, "2x Classic Burger, 1x Margherita Pizza", *list[0].Items)
	assert.Equal(t, "1x Tiramisu", *list[1].Items)

	stranger, err := f.svc.ListForUser(ctx, f.user.ID+100)
	require.NoError(t, err)
	assert.Empty(t, stranger)
}

func TestDetailAccess(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Espresso", 1)},
		OrderType: entity.OrderTypeTakeaway,
	})
	require.NoError(t, err)

	_, err = f.svc.Detail(ctx, f.user.ID+1, entity.RoleCustomer, res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Detail(ctx, f.user.ID+1, entity.RoleStaff, res.ID)
	assert.NoError(t, err)

	_, err = f.svc.Detail(ctx, f.user.ID, entity.RoleCustomer, res.ID+50)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	assert.NoError(t, f.svc.CanView(ctx, f.user.ID, entity.RoleCustomer, res.ID))
	assert.ErrorIs(t, f.svc.CanView(ctx, f.user.ID+1, entity.RoleCustomer, res.ID), ErrForbidden)
	assert.NoError(t, f.svc.CanView(ctx, f.user.ID+1, entity.RoleAdmin, res.ID))
	assert.ErrorIs(t, f.svc.CanView(ctx, f.user.ID, entity.RoleAdmin, res.ID+50), ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	takeaway, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Lemonade", 1)},
		OrderType: entity.OrderTypeTakeaway,
	})
	require.NoError(t, err)

	for _, next := range []entity.OrderStatus{
		entity.OrderStatusConfirmed,
		entity.OrderStatusPreparing,
		entity.OrderStatusReady,
	} {
		o, err := f.svc.UpdateStatus(ctx, takeaway.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, next, o.Status)
	}

	_, err = f.svc.UpdateStatus(ctx, takeaway.ID, entity.OrderStatusOutForDelivery)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, takeaway.ID, entity.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err := f.svc.UpdateStatus(ctx, takeaway.ID, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, o.Status)

	_, err = f.svc.UpdateStatus(ctx, takeaway.ID, entity.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(ctx, takeaway.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.svc.UpdateStatus(ctx, takeaway.ID+99, entity.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var stored entity.Order
	require.NoError(t, f.db.First(&stored, takeaway.ID).Error)
	assert.Equal(t, entity.OrderStatusCompleted, stored.Status)

	changes := 0
	for _, e := range f.rec.all() {
		if e.Type == events.OrderStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 4, changes)
}

func TestUpdateStatusDeliveryPath(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.user.ID, &CreateOrderInput{
		Items:           []OrderLineInput{f.line("Grilled Salmon", 1)},
		OrderType:       entity.OrderTypeDelivery,
		DeliveryAddress: strPtr("9 Elm Rd"),
	})
	require.NoError(t, err)

	for _, next := range []entity.OrderStatus{
		entity.OrderStatusConfirmed,
		entity.OrderStatusPreparing,
		entity.OrderStatusReady,
		entity.OrderStatusOutForDelivery,
		entity.OrderStatusCompleted,
	} {
		_, err := f.svc.UpdateStatus(ctx, res.ID, next)
		require.NoError(t, err, next)
	}
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.svc.Events = events.Multi{f.rec, failingPublisher{}}

	res, err := f.svc.Create(context.Background(), f.user.ID, &CreateOrderInput{
		Items:     []OrderLineInput{f.line("Espresso", 3)},
		OrderType: entity.OrderTypeTakeaway,
	})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Len(t, f.rec.all(), 1)
}

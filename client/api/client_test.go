package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant/client/api"
	"restaurant/client/cart"
	"restaurant/client/checkout"
	"restaurant/client/session"
	"restaurant/configs"
	"restaurant/entity"
	"restaurant/pkg/testdb"
	"restaurant/routes"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func startServer(t *testing.T) (*api.Client, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	require.NoError(t, configs.SeedMenu(db, zap.NewNop()))
	app := routes.Setup(db, &configs.Config{
		JWTSecret:        "e2e-secret",
		JWTTTL:           time.Hour,
		TaxRate:          decimal.RequireFromString("0.085"),
		DeliveryFee:      decimal.RequireFromString("3.99"),
		EstimatedMinutes: 30,
		CORSOrigins:      []string{"*"},
	}, zap.NewNop(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go app.Hub.Run(ctx)
	srv := httptest.NewServer(app.Engine)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return api.New(srv.URL + "/"), db
}

func TestErrorsCarryStatusAndMessage(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "Ada", "ada@example.com", "123")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	var ae *api.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Password must be at least 6 characters long", ae.Message)

	_, err = c.Me(ctx, "bogus")
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))

	_, err = c.Order(ctx, "bogus", 1)
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))
}

func TestCheckoutAgainstServer(t *testing.T) {
	c, db := startServer(t)
	ctx := context.Background()

	sess := session.New(c, &session.MemoryTokenStore{}, nil)
	sess.Bootstrap(ctx)
	require.True(t, sess.Register(ctx, "Ada", "ada@example.com", "secret1"))

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 4)

	menu, err := c.MenuItems(ctx)
	require.NoError(t, err)
	byName := map[string]api.MenuItem{}
	for _, m := range menu {
		byName[m.Name] = m
	}

	store := cart.NewStore()
	for _, name := range []string{"Classic Burger", "Classic Burger", "Lemonade"} {
		m := byName[name]
		store.Add(cart.Item{ID: m.ID, Name: m.Name, Price: m.Price, ImageURL: m.ImageURL}, 1)
	}
	store.SetInstructions(byName["Lemonade"].ID, "no ice")

	flow := checkout.New(store, sess, c, nil)
	res, err := flow.Submit(ctx, checkout.Details{OrderType: checkout.OrderTypeDelivery, DeliveryAddress: "1 Main St"})
	require.NoError(t, err)
	assert.True(t, store.State().Empty())

	detail, err := c.Order(ctx, sess.Token(), res.OrderID)
	require.NoError(t, err)
	// 30.47 + 2.59 tax + 3.99 delivery
	assert.Equal(t, "37.05", detail.TotalAmount.StringFixed(2))
	assert.Equal(t, "pending", detail.Status)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "no ice", detail.Items[1].SpecialInstructions)

	orders, err := c.Orders(ctx, sess.Token())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Items)
	assert.Equal(t, "2x Classic Burger, 1x Lemonade", *orders[0].Items)

	// status updates reach a watcher
	watchCtx, stop := context.WithTimeout(ctx, 5*time.Second)
	defer stop()
	stream, err := c.WatchOrder(watchCtx, sess.Token(), res.OrderID)
	require.NoError(t, err)

	staff := entity.User{Name: "Sam", Email: "sam@example.com"}
	_, err = c.Register(ctx, staff.Name, staff.Email, "secret1")
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.User{}).Where("email = ?", staff.Email).Update("role", entity.RoleStaff).Error)
	login, err := c.Login(ctx, staff.Email, "secret1")
	require.NoError(t, err)

	// the hub may not have registered the watcher yet, so keep nudging
	// until an event arrives
	statuses := []string{"confirmed", "preparing", "ready", "out_for_delivery", "completed"}
	var got api.OrderEvent
	for i := 0; i < len(statuses) && got.Status == ""; i++ {
		require.NoError(t, c.UpdateOrderStatus(ctx, login.Token, res.OrderID, statuses[i]))
		select {
		case got = <-stream:
		case <-time.After(300 * time.Millisecond):
		}
	}
	require.NotEmpty(t, got.Status)
	assert.Equal(t, "order.status_changed", got.Type)
	assert.Equal(t, res.OrderID, got.OrderID)

	err = c.UpdateOrderStatus(ctx, sess.Token(), res.OrderID, "cancelled")
	assert.Equal(t, http.StatusForbidden, api.StatusOf(err))
}

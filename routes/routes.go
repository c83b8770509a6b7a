package routes

import (
	"context"
	"net/http"

	"restaurant/configs"
	"restaurant/controllers"
	"restaurant/entity"
	"restaurant/events"
	"restaurant/middlewares"
	"restaurant/repository"
	"restaurant/services"
	"restaurant/utils"
	"restaurant/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Engine *gin.Engine
	// Hub must be started with Run before websocket clients connect.
	Hub *ws.OrderHub
}

// Setup wires repositories, services and controllers onto a fresh gin engine.
// broker receives order events next to the websocket hub; nil means none.
func Setup(db *gorm.DB, cfg *configs.Config, log *zap.Logger, broker events.Publisher, reg *prometheus.Registry) *App {
	if broker == nil {
		broker = events.Noop{}
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	utils.RegisterValidators()

	r := gin.New()
	metrics := middlewares.NewHTTPMetrics(reg)
	r.Use(
		middlewares.RequestLogger(log),
		middlewares.Recovery(log),
		metrics.Middleware(),
		middlewares.CORSMiddleware(cfg.CORSOrigins),
	)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	var orderSvc *services.OrderService
	hub := ws.NewOrderHub(func(ctx context.Context, userID uint, role string, orderID uint) error {
		return orderSvc.CanView(ctx, userID, role, orderID)
	}, log.Named("ws"))

	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, log.Named("auth"))
	menuSvc := services.NewMenuService(menuRepo)
	orderSvc = services.NewOrderService(
		db, orderRepo, menuRepo,
		services.Pricing{TaxRate: cfg.TaxRate, DeliveryFee: cfg.DeliveryFee},
		cfg.EstimatedMinutes,
		events.Multi{hub, broker},
		log.Named("orders"),
	)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc, log)
	menuCtrl := controllers.NewMenuController(menuSvc, log)
	orderCtrl := controllers.NewOrderController(orderSvc, log)

	requireAuth := middlewares.AuthMiddleware(cfg.JWTSecret)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Auth
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
		a.GET("/me", requireAuth, authCtrl.Me)
	}

	// Menu (public)
	m := r.Group("/menu")
	{
		m.GET("/categories", menuCtrl.Categories)
		m.GET("/items", menuCtrl.Items)
		m.GET("/items/:id", menuCtrl.Item)
	}

	// Orders
	o := r.Group("/orders", requireAuth)
	{
		o.POST("", orderCtrl.Create)
		o.GET("", orderCtrl.List)
		o.GET("/:id", orderCtrl.Detail)
		o.PATCH("/:id/status", middlewares.RequireRole(entity.RoleStaff, entity.RoleAdmin), orderCtrl.UpdateStatus)
	}

	// Live order status
	r.GET("/ws/orders/:id", middlewares.WSAuthMiddleware(cfg.JWTSecret), hub.HandleWebSocket)

	return &App{Engine: r, Hub: hub}
}

package controllers

import (
	"errors"
	"strconv"
	"strings"

	"restaurant/entity"
	"restaurant/pkg/resp"
	"restaurant/services"
	"restaurant/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

// OrderItemIn mirrors a cart line; only id, quantity and instructions are
// trusted, price and name are re-read from the menu.
type OrderItemIn struct {
	ID                  uint             `json:"id" binding:"required"`
	Quantity            int              `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string           `json:"special_instructions"`
	Name                string           `json:"name"`
	Price               *decimal.Decimal `json:"price"`
	ImageURL            string           `json:"image_url"`
}

type CreateOrderReq struct {
	Items           []OrderItemIn    `json:"items" binding:"dive"`
	Total           *decimal.Decimal `json:"total"`
	OrderType       entity.OrderType `json:"orderType" binding:"required,ordertype"`
	TableNumber     *string          `json:"tableNumber"`
	DeliveryAddress *string          `json:"deliveryAddress"`
	Notes           string           `json:"notes"`
}

type CreateOrderRes struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type UpdateStatusReq struct {
	Status entity.OrderStatus `json:"status" binding:"required,orderstatus"`
}

type OrderController struct {
	Svc *services.OrderService
	Log *zap.Logger
}

func NewOrderController(s *services.OrderService, log *zap.Logger) *OrderController {
	return &OrderController{Svc: s, Log: log}
}

// POST /orders
func (oc *OrderController) Create(c *gin.Context) {
	var req CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if len(req.Items) == 0 {
		resp.BadRequest(c, services.ErrEmptyOrder.Error())
		return
	}

	in := &services.CreateOrderInput{
		Items:           make([]services.OrderLineInput, 0, len(req.Items)),
		ClientTotal:     req.Total,
		OrderType:       req.OrderType,
		TableNumber:     req.TableNumber,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(IdempotencyHeader)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderLineInput{
			MenuItemID: it.ID, Quantity: it.Quantity, SpecialInstructions: it.SpecialInstructions,
		})
	}

	res, err := oc.Svc.Create(c.Request.Context(), utils.CurrentUserID(c), in)
	switch {
	case err == nil:
		resp.OK(c, CreateOrderRes{ID: res.ID, Message: "Order placed successfully"})
	case services.IsValidation(err):
		resp.BadRequest(c, err.Error())
	default:
		resp.ServerError(c, oc.Log, "Failed to create order", err)
	}
}

// GET /orders
func (oc *OrderController) List(c *gin.Context) {
	items, err := oc.Svc.ListForUser(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.ServerError(c, oc.Log, "Failed to fetch orders", err)
		return
	}
	resp.OK(c, items)
}

// GET /orders/:id
func (oc *OrderController) Detail(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	d, err := oc.Svc.Detail(c.Request.Context(), utils.CurrentUserID(c), utils.CurrentRole(c), id)
	if err != nil {
		oc.orderError(c, err, "Failed to fetch order")
		return
	}
	resp.OK(c, d)
}

// PATCH /orders/:id/status (staff/admin)
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		return
	}
	var req UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	o, err := oc.Svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		oc.orderError(c, err, "Failed to update order status")
		return
	}
	resp.OK(c, gin.H{"id": o.ID, "status": o.Status})
}

func (oc *OrderController) orderError(c *gin.Context, err error, msg string) {
	switch {
	case services.IsValidation(err):
		resp.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		resp.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		resp.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		resp.Conflict(c, err.Error())
	default:
		resp.ServerError(c, oc.Log, msg, err)
	}
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		resp.BadRequest(c, "invalid order id")
		return 0, false
	}
	return uint(id), true
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant/entity"
	"restaurant/events"
	"restaurant/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService struct {
	DB       *gorm.DB
	Repo     *repository.OrderRepository
	MenuRepo *repository.MenuRepository

	Pricing          Pricing
	EstimatedMinutes int

	Events events.Publisher
	Log    *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	menuRepo *repository.MenuRepository,
	pricing Pricing,
	estimatedMinutes int,
	pub events.Publisher,
	log *zap.Logger,
) *OrderService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &OrderService{
		DB: db, Repo: repo, MenuRepo: menuRepo,
		Pricing: pricing, EstimatedMinutes: estimatedMinutes,
		Events: pub, Log: log,
	}
}

// ----- inputs -----

type OrderLineInput struct {
	MenuItemID          uint
	Quantity            int
	SpecialInstructions string
}

type CreateOrderInput struct {
	Items           []OrderLineInput
	ClientTotal     *decimal.Decimal // informational only
	OrderType       entity.OrderType
	TableNumber     *string
	DeliveryAddress *string
	Notes           string
	IdempotencyKey  string
}

type CreateOrderResult struct {
	ID     uint
	Totals Totals
	// Replayed is true when the idempotency key matched an existing order.
	Replayed bool
}

// ----- Create -----

// Create prices the order from stored menu prices and writes the order and
// all of its lines in one transaction.
func (s *OrderService) Create(ctx context.Context, userID uint, in *CreateOrderInput) (*CreateOrderResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !in.OrderType.Valid() {
		return nil, ErrInvalidOrderType
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	tableNumber := trimmedOrNil(in.TableNumber)
	deliveryAddress := trimmedOrNil(in.DeliveryAddress)
	switch in.OrderType {
	case entity.OrderTypeDineIn:
		deliveryAddress = nil
	case entity.OrderTypeDelivery:
		if deliveryAddress == nil {
			return nil, ErrDeliveryAddressRequired
		}
		tableNumber = nil
	default:
		tableNumber, deliveryAddress = nil, nil
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if prev, err := s.Repo.FindByIdempotencyKey(ctx, userID, key); err == nil {
			return s.replay(prev), nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	ids := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.MenuItemID)
	}
	menu, err := s.MenuRepo.FindItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}

	subtotal := decimal.Zero
	lines := make([]entity.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		m, ok := menu[it.MenuItemID]
		if !ok {
			return nil, ErrUnknownMenuItem
		}
		if !m.IsAvailable {
			return nil, ErrItemUnavailable
		}
		line := entity.OrderItem{
			MenuItemID:          m.ID,
			Quantity:            it.Quantity,
			UnitPrice:           m.Price,
			SpecialInstructions: strings.TrimSpace(it.SpecialInstructions),
		}
		subtotal = subtotal.Add(line.LineTotal())
		lines = append(lines, line)
	}

	totals := s.Pricing.Compute(subtotal, in.OrderType)
	if in.ClientTotal != nil && !in.ClientTotal.Equal(totals.Subtotal) && !in.ClientTotal.Equal(totals.Total) {
		s.Log.Debug("client total differs from server total",
			zap.Uint("user_id", userID),
			zap.String("client", in.ClientTotal.String()),
			zap.String("server", totals.Total.String()),
		)
	}

	order := entity.Order{
		UserID:          userID,
		TotalAmount:     totals.Total,
		Status:          entity.OrderStatusPending,
		OrderType:       in.OrderType,
		TableNumber:     tableNumber,
		DeliveryAddress: deliveryAddress,
		Notes:           strings.TrimSpace(in.Notes),
		EstimatedTime:   s.EstimatedMinutes,
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.CreateOrder(tx, &order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := s.Repo.CreateOrderItem(tx, &lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// a concurrent request with the same key won the insert
		if key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if prev, ferr := s.Repo.FindByIdempotencyKey(ctx, userID, key); ferr == nil {
				return s.replay(prev), nil
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.Log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("order_type", string(order.OrderType)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("lines", len(lines)),
	)
	s.publish(ctx, events.OrderCreated, &order)

	return &CreateOrderResult{ID: order.ID, Totals: totals}, nil
}

func (s *OrderService) replay(o *entity.Order) *CreateOrderResult {
	s.Log.Info("order replayed from idempotency key", zap.Uint("order_id", o.ID))
	return &CreateOrderResult{ID: o.ID, Totals: Totals{Total: o.TotalAmount}, Replayed: true}
}

// ----- List & Detail -----

func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]repository.OrderSummary, error) {
	return s.Repo.ListOrdersForUser(ctx, userID)
}

type OrderLine struct {
	ID                  uint            `json:"id"`
	MenuItemID          uint            `json:"menu_item_id"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	LineTotal           decimal.Decimal `json:"line_total"`
	SpecialInstructions string          `json:"special_instructions"`
}

type OrderDetail struct {
	ID              uint               `json:"id"`
	UserID          uint               `json:"user_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          entity.OrderStatus `json:"status"`
	OrderType       entity.OrderType   `json:"order_type"`
	TableNumber     *string            `json:"table_number"`
	DeliveryAddress *string            `json:"delivery_address"`
	Notes           string             `json:"notes"`
	EstimatedTime   int                `json:"estimated_time"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           []OrderLine        `json:"items"`
}

// Detail returns an order to its owner or to staff.
func (s *OrderService) Detail(ctx context.Context, userID uint, role string, orderID uint) (*OrderDetail, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !CanViewOrder(o, userID, role) {
		return nil, ErrForbidden
	}

	lines := make([]OrderLine, 0, len(o.OrderItems))
	for _, oi := range o.OrderItems {
		lines = append(lines, OrderLine{
			ID:                  oi.ID,
			MenuItemID:          oi.MenuItemID,
			Name:                oi.MenuItem.Name,
			Quantity:            oi.Quantity,
			UnitPrice:           oi.UnitPrice,
			LineTotal:           oi.LineTotal(),
			SpecialInstructions: oi.SpecialInstructions,
		})
	}
	return &OrderDetail{
		ID: o.ID, UserID: o.UserID, TotalAmount: o.TotalAmount, Status: o.Status,
		OrderType: o.OrderType, TableNumber: o.TableNumber, DeliveryAddress: o.DeliveryAddress,
		Notes: o.Notes, EstimatedTime: o.EstimatedTime, CreatedAt: o.CreatedAt, Items: lines,
	}, nil
}

// CanViewOrder: owners see their own orders, staff and admins see all.
func CanViewOrder(o *entity.Order, userID uint, role string) bool {
	return o.UserID == userID || role == entity.RoleStaff || role == entity.RoleAdmin
}

// CanView loads the order and applies CanViewOrder.
func (s *OrderService) CanView(ctx context.Context, userID uint, role string, orderID uint) error {
	var o entity.Order
	if err := s.DB.WithContext(ctx).Select("id", "user_id").First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if !CanViewOrder(&o, userID, role) {
		return ErrForbidden
	}
	return nil
}

// ----- Status -----

// UpdateStatus moves an order along its lifecycle; the conditional update
// makes concurrent staff actions on the same order conflict instead of
// overwriting each other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, next entity.OrderStatus) (*entity.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	var order entity.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransition(next, order.OrderType) {
			return ErrInvalidTransition
		}
		affected, err := s.Repo.UpdateStatusGuard(tx, order.ID, order.Status, next)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("order status changed", zap.Uint("order_id", order.ID), zap.String("status", string(next)))
	s.publish(ctx, events.OrderStatusChanged, &order)
	return &order, nil
}

// publish never fails the request; the order is already committed.
func (s *OrderService) publish(ctx context.Context, t events.Type, o *entity.Order) {
	e := events.New(t, o.ID, o.UserID, string(o.Status), string(o.OrderType), o.TotalAmount)
	if err := s.Events.Publish(ctx, e); err != nil {
		s.Log.Warn("publish order event", zap.String("type", string(t)), zap.Uint("order_id", o.ID), zap.Error(err))
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

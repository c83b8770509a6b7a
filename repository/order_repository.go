package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders ----------------

func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) CreateOrderItem(tx *gorm.DB, oi *entity.OrderItem) error {
	return tx.Create(oi).Error
}

// FindByIdempotencyKey returns the order a user already placed with key.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder loads an order with its lines and their menu items.
func (r *OrderRepository) GetOrder(ctx context.Context, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.WithContext(ctx).
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("OrderItems.MenuItem").
		First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderSummary is one row of a customer's order history.
type OrderSummary struct {
	ID              uint               `json:"id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	Status          entity.OrderStatus `json:"status"`
	OrderType       entity.OrderType   `json:"order_type"`
	TableNumber     *string            `json:"table_number"`
	DeliveryAddress *string            `json:"delivery_address"`
	Notes           string             `json:"notes"`
	EstimatedTime   int                `json:"estimated_time"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           *string            `json:"items"`
}

// ListOrdersForUser returns the user's orders newest first, each with a
// "2x Burger, 1x Fries" summary of its lines ordered by item name.
func (r *OrderRepository) ListOrdersForUser(ctx context.Context, userID uint) ([]OrderSummary, error) {
	db := r.DB.WithContext(ctx)

	var orders []entity.Order
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []OrderSummary{}, nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var lines []struct {
		OrderID  uint
		Quantity int
		Name     string
	}
	if err := db.Model(&entity.OrderItem{}).
		Select("order_items.order_id, order_items.quantity, menu_items.name").
		Joins("LEFT JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("order_items.order_id IN ?", ids).
		Order("menu_items.name").Order("order_items.id").
		Scan(&lines).Error; err != nil {
		return nil, err
	}

	parts := make(map[uint][]string, len(orders))
	for _, l := range lines {
		parts[l.OrderID] = append(parts[l.OrderID], fmt.Sprintf("%dx %s", l.Quantity, l.Name))
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		s := OrderSummary{
			ID:              o.ID,
			TotalAmount:     o.TotalAmount,
			Status:          o.Status,
			OrderType:       o.OrderType,
			TableNumber:     o.TableNumber,
			DeliveryAddress: o.DeliveryAddress,
			Notes:           o.Notes,
			EstimatedTime:   o.EstimatedTime,
			CreatedAt:       o.CreatedAt,
		}
		if p, ok := parts[o.ID]; ok {
			joined := strings.Join(p, ", ")
			s.Items = &joined
		}
		out = append(out, s)
	}
	return out, nil
}

// UpdateStatusGuard moves an order from one status to another only if it is
// still in the expected status; callers treat 0 rows as a conflict.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

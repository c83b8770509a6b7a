package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status          OrderStatus     `gorm:"not null;default:pending;index" json:"status"`
	OrderType       OrderType       `gorm:"not null" json:"order_type"`
	TableNumber     *string         `json:"table_number"`
	DeliveryAddress *string         `json:"delivery_address"`
	Notes           string          `json:"notes"`
	EstimatedTime   int             `json:"estimated_time"` // minutes

	// client supplied; one order per key per user
	IdempotencyKey *string `gorm:"uniqueIndex:idx_orders_user_idem" json:"-"`

	UserID uint `gorm:"index;uniqueIndex:idx_orders_user_idem" json:"user_id"`
	User   User `json:"-"`

	OrderItems []OrderItem `json:"-"` // preload on detail only
}

package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Category struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type MenuItem struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        string          `json:"image_url"`
	CategoryID      uint            `json:"category_id"`
	IsAvailable     bool            `json:"is_available"`
	PreparationTime int             `json:"preparation_time"`
	Ingredients     string          `json:"ingredients"`
	Allergens       string          `json:"allergens"`
}

type OrderItem struct {
	ID                  uint            `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	ImageURL            string          `json:"image_url,omitempty"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	OrderType       string          `json:"orderType"`
	TableNumber     *string         `json:"tableNumber"`
	DeliveryAddress *string         `json:"deliveryAddress"`
	Notes           string          `json:"notes,omitempty"`
}

type CreateOrderResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type OrderSummary struct {
	ID              uint            `json:"id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	OrderType       string          `json:"order_type"`
	TableNumber     *string         `json:"table_number"`
	DeliveryAddress *string         `json:"delivery_address"`
	Notes           string          `json:"notes"`
	EstimatedTime   int             `json:"estimated_time"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           *string         `json:"items"`
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
	ID              uint            `json:"id"`
	UserID          uint            `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	OrderType       string          `json:"order_type"`
	TableNumber     *string         `json:"table_number"`
	DeliveryAddress *string         `json:"delivery_address"`
	Notes           string          `json:"notes"`
	EstimatedTime   int             `json:"estimated_time"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderLine     `json:"items"`
}

// OrderEvent is what the order status websocket pushes.
type OrderEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OrderID    uint            `json:"order_id"`
	UserID     uint            `json:"user_id"`
	Status     string          `json:"status"`
	OrderType  string          `json:"order_type"`
	Total      decimal.Decimal `json:"total_amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

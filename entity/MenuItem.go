package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItem struct {
	gorm.Model
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL        string          `json:"image_url"`
	IsAvailable     bool            `gorm:"not null" json:"is_available"`
	PreparationTime int             `json:"preparation_time"` // minutes
	Ingredients     string          `json:"ingredients"`
	Allergens       string          `json:"allergens"`

	CategoryID uint     `gorm:"index" json:"category_id"`
	Category   Category `json:"-"`

	OrderItems []OrderItem `json:"-"`
}

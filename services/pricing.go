package services

import (
	"restaurant/entity"

	"github.com/shopspring/decimal"
)

// Pricing holds the server-side rules for turning a subtotal into what the
// customer pays.
type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:     decimal.RequireFromString("0.085"),
		DeliveryFee: decimal.RequireFromString("3.99"),
	}
}

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// Compute applies tax (rounded to cents) and the delivery fee for delivery orders.
func (p Pricing) Compute(subtotal decimal.Decimal, orderType entity.OrderType) Totals {
	tax := subtotal.Mul(p.TaxRate).Round(2)
	fee := decimal.Zero
	if orderType == entity.OrderTypeDelivery {
		fee = p.DeliveryFee
	}
	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal.Add(tax).Add(fee),
	}
}

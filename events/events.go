// Package events carries order lifecycle notifications to whoever listens:
// the live websocket hub and, optionally, a message broker.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
)

type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OrderID    uint            `json:"order_id"`
	UserID     uint            `json:"user_id"`
	Status     string          `json:"status"`
	OrderType  string          `json:"order_type"`
	Total      decimal.Decimal `json:"total_amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, orderID, userID uint, status, orderType string, total decimal.Decimal) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OrderID:    orderID,
		UserID:     userID,
		Status:     status,
		OrderType:  orderType,
		Total:      total,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Multi fans an event out to every publisher and reports all failures.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

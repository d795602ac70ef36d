package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order event types
const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderCancelled     = "order.cancelled"
	EventTypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent describes a committed change to an order
type OrderEvent struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	OrderID         int64           `json:"order_id"`
	UserID          int64           `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	PreviousStatus  OrderStatus     `json:"previous_status,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CustomizationID *int64          `json:"customization_id,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// NewOrderEvent builds an event for the order's current state
func NewOrderEvent(eventType string, o *Order, previous OrderStatus) OrderEvent {
	return OrderEvent{
		ID:             uuid.New(),
		Type:           eventType,
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalAmount:    o.TotalAmount,
		OccurredAt:     time.Now().UTC(),
	}
}

// OrderEventPublisher ships committed order events to downstream consumers
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

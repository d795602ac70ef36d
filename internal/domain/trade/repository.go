package trade

import (
	"context"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	UserID int64
	Status OrderStatus
}

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	// Create inserts the order and its items, filling in generated IDs
	Create(ctx context.Context, order *Order) error
	// FindByID loads the order with its items
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// UpdateStatus moves the order from one status to another. It returns false
	// when the order is no longer in the from status.
	UpdateStatus(ctx context.Context, id int64, from, to OrderStatus) (bool, error)
	Count(ctx context.Context, userID int64, statuses ...OrderStatus) (int64, error)
	SumPaidRevenue(ctx context.Context) (decimal.Decimal, error)
	FindRecent(ctx context.Context, userID int64, limit int) ([]Order, error)
}

// CustomizationFilter narrows customization listings
type CustomizationFilter struct {
	shared.Filter
	UserID int64
	Status CustomizationStatus
}

// CustomizationRepository defines persistence operations for customizations
type CustomizationRepository interface {
	Create(ctx context.Context, c *Customization) error
	FindByID(ctx context.Context, id int64) (*Customization, error)
	FindAll(ctx context.Context, filter CustomizationFilter) ([]Customization, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	// MarkCompleted moves an accepted customization to completed and links
	// the created order. It returns false when the request is no longer accepted.
	MarkCompleted(ctx context.Context, id, orderID int64) (bool, error)
}

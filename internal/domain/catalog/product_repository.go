package catalog

import (
	"context"

	"github.com/buneko/backend/internal/domain/shared"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	CategoryID int64
}

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	FindByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// DecrementStock takes qty units only if at least qty are available.
	// It returns false, without error, when the guard rejects the update.
	DecrementStock(ctx context.Context, id int64, qty int) (bool, error)
	// RestoreStock puts qty units back
	RestoreStock(ctx context.Context, id int64, qty int) error
}

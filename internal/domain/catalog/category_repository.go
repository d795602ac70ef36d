package catalog

import "context"

// CategoryRepository defines persistence operations for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) error
}

// WishlistRepository defines persistence operations for wishlists
type WishlistRepository interface {
	FindByUser(ctx context.Context, userID int64) ([]WishlistItem, error)
	Add(ctx context.Context, userID, productID int64) error
	Remove(ctx context.Context, userID, productID int64) (bool, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

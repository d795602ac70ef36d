package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/buneko/backend/internal/domain/catalog"
)

// GormWishlistRepository implements WishlistRepository using GORM
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewGormWishlistRepository creates a new GormWishlistRepository
func NewGormWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// FindByUser returns the user's wishlist joined with product details, newest first
func (r *GormWishlistRepository) FindByUser(ctx context.Context, userID int64) ([]catalog.WishlistItem, error) {
	var items []catalog.WishlistItem
	err := r.db.WithContext(ctx).
		Table("wishlist").
		Select(`wishlist.id, wishlist.product_id, wishlist.created_at,
			products.name, products.description, products.price, products.image_url, products.stock,
			categories.name AS category_name`).
		Joins("JOIN products ON products.id = wishlist.product_id").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("wishlist.user_id = ?", userID).
		Order("wishlist.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Add saves the product for the user. Adding the same product twice is a no-op.
func (r *GormWishlistRepository) Add(ctx context.Context, userID, productID int64) error {
	entry := catalog.WishlistEntry{UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&entry).Error
}

// Remove deletes the pair and reports whether it existed
func (r *GormWishlistRepository) Remove(ctx context.Context, userID, productID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&catalog.WishlistEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByUser returns the number of saved products
func (r *GormWishlistRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.WishlistEntry{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

var _ catalog.WishlistRepository = (*GormWishlistRepository)(nil)

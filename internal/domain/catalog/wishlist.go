package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry links a user to a product they saved. The pair is unique.
type WishlistEntry struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistEntry) TableName() string {
	return "wishlist"
}

// WishlistItem is a wishlist entry joined with its product
type WishlistItem struct {
	ID           int64
	ProductID    int64
	Name         string
	Description  string
	Price        decimal.Decimal
	ImageURL     string
	Stock        int
	CategoryName string
	CreatedAt    time.Time
}

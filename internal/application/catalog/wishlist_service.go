package catalog

import (
	"context"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/shared"
)

// ErrNotInWishlist is returned when removing a product that was never saved
var ErrNotInWishlist = shared.NotFoundf("Product not found in wishlist")

// WishlistService manages the products a customer saved
type WishlistService struct {
	wishlistRepo catalog.WishlistRepository
	productRepo  catalog.ProductRepository
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(wishlistRepo catalog.WishlistRepository, productRepo catalog.ProductRepository) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

// List returns the saved products of a user, newest first
func (s *WishlistService) List(ctx context.Context, userID int64) ([]WishlistItemResponse, error) {
	items, err := s.wishlistRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]WishlistItemResponse, len(items))
	for i, item := range items {
		out[i] = WishlistItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Name:         item.Name,
			Description:  item.Description,
			Price:        item.Price,
			ImageURL:     item.ImageURL,
			Stock:        item.Stock,
			CategoryName: item.CategoryName,
			CreatedAt:    item.CreatedAt,
		}
	}
	return out, nil
}

// Add saves an existing product. Saving it again is not an error.
func (s *WishlistService) Add(ctx context.Context, userID int64, req AddWishlistRequest) error {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return productLookupError(err)
	}
	return s.wishlistRepo.Add(ctx, userID, req.ProductID)
}

// Remove deletes a saved product
func (s *WishlistService) Remove(ctx context.Context, userID, productID int64) error {
	removed, err := s.wishlistRepo.Remove(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotInWishlist
	}
	return nil
}

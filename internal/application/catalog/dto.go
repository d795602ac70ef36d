package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/shared"
)

// ==================== Category DTOs ====================

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" form:"description" binding:"max=1000"`
}

// UpdateCategoryRequest is a partial category update
type UpdateCategoryRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=2,max=50"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=1000"`
}

// Patch converts the request into a domain patch
func (r UpdateCategoryRequest) Patch() catalog.CategoryPatch {
	return catalog.CategoryPatch{Name: r.Name, Description: r.Description}
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url,omitempty"`
	ProductCount int64     `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ImageURL:     c.ImageURL,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// ==================== Product DTOs ====================

// CreateProductRequest represents a request to create a product. Numbers are
// accepted both as JSON numbers and as multipart form fields.
type CreateProductRequest struct {
	Name        string      `json:"name" form:"name" binding:"required,min=3,max=100"`
	Description string      `json:"description" form:"description" binding:"required,min=10,max=1000"`
	Price       json.Number `json:"price" form:"price" binding:"required"`
	CategoryID  int64       `json:"category_id" form:"category_id" binding:"required,gt=0"`
	Stock       int         `json:"stock" form:"stock" binding:"gte=0"`
}

// UpdateProductRequest is a partial product update
type UpdateProductRequest struct {
	Name        *string      `json:"name" form:"name" binding:"omitempty,min=3,max=100"`
	Description *string      `json:"description" form:"description" binding:"omitempty,min=10,max=1000"`
	Price       *json.Number `json:"price" form:"price"`
	CategoryID  *int64       `json:"category_id" form:"category_id" binding:"omitempty,gt=0"`
	Stock       *int         `json:"stock" form:"stock" binding:"omitempty,gte=0"`
}

// Patch converts the request into a domain patch
func (r UpdateProductRequest) Patch() (catalog.ProductPatch, error) {
	patch := catalog.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Stock:       r.Stock,
	}
	if r.Price != nil {
		price, err := parsePrice(*r.Price)
		if err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	return patch, nil
}

func parsePrice(n json.Number) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price must be a positive number")
	}
	return price, nil
}

// ProductListFilter narrows the product listing
type ProductListFilter struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"limit" binding:"omitempty,min=1,max=100"`
	CategoryID int64  `form:"category_id" binding:"omitempty,gt=0"`
	Search     string `form:"search" binding:"max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Stock        int             `json:"stock"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		ImageURL:     p.ImageURL,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// ==================== Wishlist DTOs ====================

// AddWishlistRequest saves a product to the wishlist
type AddWishlistRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

// WishlistItemResponse is a saved product
type WishlistItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url,omitempty"`
	Stock        int             `json:"stock"`
	CategoryName string          `json:"category_name,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

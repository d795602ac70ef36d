package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a handmade item offered in the storefront.
// Stock is never negative; the database enforces it with a CHECK constraint
// and every decrement is guarded by the current stock level.
type Product struct {
	shared.BaseEntity
	Name         string          `gorm:"type:varchar(100);not null"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CategoryID   int64           `gorm:"not null;index"`
	ImageURL     string          `gorm:"column:image_url;type:varchar(500)"`
	Stock        int             `gorm:"not null;default:0"`
	CategoryName string          `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, description string, price decimal.Decimal, categoryID int64, stock int) (*Product, error) {
	p := &Product{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price.Round(2),
		CategoryID:  categoryID,
		Stock:       stock,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) validate() error {
	if err := validateProductName(p.Name); err != nil {
		return err
	}
	if err := validateProductDescription(p.Description); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be a positive number")
	}
	if p.CategoryID <= 0 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category ID must be a positive integer")
	}
	if p.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock must be a non-negative integer")
	}
	return nil
}

// HasStock reports whether qty units can be taken from the current stock
func (p *Product) HasStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}

func validateProductName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 100 {
		return shared.NewDomainError("INVALID_NAME", "Product name must be between 3 and 100 characters")
	}
	return nil
}

func validateProductDescription(description string) error {
	n := utf8.RuneCountInString(description)
	if n < 10 || n > 1000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description must be between 10 and 1000 characters")
	}
	return nil
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	Stock       *int
	ImageURL    *string
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Validate checks every field that is present
func (p ProductPatch) Validate() error {
	if p.Name != nil {
		if err := validateProductName(strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateProductDescription(strings.TrimSpace(*p.Description)); err != nil {
			return err
		}
	}
	if p.Price != nil && p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be a positive number")
	}
	if p.CategoryID != nil && *p.CategoryID <= 0 {
		return shared.NewDomainError("INVALID_CATEGORY", "Category ID must be a positive integer")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock must be a non-negative integer")
	}
	return nil
}

// Columns returns the column/value pairs to write
func (p ProductPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		cols["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		cols["price"] = p.Price.Round(2)
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	if p.Stock != nil {
		cols["stock"] = *p.Stock
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

// Apply copies the present fields onto product
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		product.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		product.Price = p.Price.Round(2)
	}
	if p.CategoryID != nil {
		product.CategoryID = *p.CategoryID
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
}

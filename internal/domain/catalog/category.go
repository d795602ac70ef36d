package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/buneko/backend/internal/domain/shared"
)

// Category groups products. A category cannot be removed while products reference it.
type Category struct {
	shared.BaseEntity
	Name         string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description  string `gorm:"type:text"`
	ImageURL     string `gorm:"column:image_url;type:varchar(500)"`
	ProductCount int64  `gorm:"->;-:migration"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	return &Category{
		Name:        name,
		Description: strings.TrimSpace(description),
	}, nil
}

// CanDelete reports whether the category has no products left
func (c *Category) CanDelete() error {
	if c.ProductCount > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Cannot delete category with existing products")
	}
	return nil
}

func validateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 50 {
		return shared.NewDomainError("INVALID_NAME", "Category name must be between 2 and 50 characters")
	}
	return nil
}

// CategoryPatch is a partial category update
type CategoryPatch struct {
	Name        *string
	Description *string
	ImageURL    *string
}

// Validate checks every field that is present
func (p CategoryPatch) Validate() error {
	if p.Name != nil {
		return validateCategoryName(strings.TrimSpace(*p.Name))
	}
	return nil
}

// Columns returns the column/value pairs to write
func (p CategoryPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		cols["description"] = strings.TrimSpace(*p.Description)
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/shared"
)

// ErrProductInUse is returned when order lines still reference a product
var ErrProductInUse = shared.NewDomainError("PRODUCT_IN_USE", "Cannot delete a product that appears in orders")

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) withCategory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.withCategory(ctx).Where("products.id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns one page of products and the total number of matches
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.CategoryID > 0 {
			db = db.Where("products.category_id = ?", filter.CategoryID)
		}
		if filter.Search != "" {
			p := likePattern(filter.Search)
			db = db.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", p, p)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	if err := r.withCategory(ctx).
		Scopes(where, pageScope("products", filter.Filter, ProductSortFields)).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindByCategory returns every product of a category, newest first
func (r *GormProductRepository) FindByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.withCategory(ctx).
		Where("products.category_id = ?", categoryID).
		Order("products.created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product and sets its generated ID
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update writes the given columns. Callers load the product first; MySQL
// reports zero affected rows for unchanged values so no row check is made here.
func (r *GormProductRepository) Update(ctx context.Context, id int64, columns map[string]any) error {
	return r.db.WithContext(ctx).Model(&catalog.Product{}).Where("id = ?", id).Updates(columns).Error
}

// Delete removes a product that no order references
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrProductInUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&n).Error
	return n, err
}

// DecrementStock takes qty units in a single guarded statement. Concurrent
// orders serialize on the row, and the stock >= qty guard is evaluated against
// the committed value, so the product can never be oversold.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RestoreStock puts qty units back
func (r *GormProductRepository) RestoreStock(ctx context.Context, id int64, qty int) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/buneko/backend/internal/domain/marketing"
	"github.com/buneko/backend/internal/domain/shared"
)

// GormContentRepository implements ContentRepository using GORM
type GormContentRepository struct {
	db *gorm.DB
}

// NewGormContentRepository creates a new GormContentRepository
func NewGormContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// FindByID finds a content link by ID
func (r *GormContentRepository) FindByID(ctx context.Context, id int64) (*marketing.Content, error) {
	var c marketing.Content
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll returns one page of content links, newest first by default
func (r *GormContentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]marketing.Content, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&marketing.Content{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []marketing.Content
	if err := r.db.WithContext(ctx).
		Scopes(pageScope("contents", filter, CommonSortFields)).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create inserts a content link
func (r *GormContentRepository) Create(ctx context.Context, c *marketing.Content) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Save writes every field of an existing content link
func (r *GormContentRepository) Save(ctx context.Context, c *marketing.Content) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes a content link
func (r *GormContentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&marketing.Content{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ marketing.ContentRepository = (*GormContentRepository)(nil)

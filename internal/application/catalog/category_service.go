package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

const categoryFolder = "categories"

// ErrCategoryExists is returned when another category already uses the name
var ErrCategoryExists = shared.NewDomainError("CATEGORY_EXISTS", "Category with this name already exists")

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	images       imageCleaner
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	media shared.MediaStore,
	tasks *background.Runner,
	zapLogger *zap.Logger,
) *CategoryService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		images:       newImageCleaner(media, tasks, zapLogger),
		logger:       zapLogger,
	}
}

// List returns every category with its product count
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryLookupError(err)
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a category with an optional image
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest, image *shared.MediaUpload) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	exists, err := s.categoryRepo.ExistsByName(ctx, category.Name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoryExists
	}

	url, err := s.images.upload(ctx, categoryFolder, image)
	if err != nil {
		return nil, err
	}
	category.ImageURL = url

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		s.images.deleteLater(ctx, url)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("category created", zap.Int64("category_id", category.ID))
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update applies a partial update and optionally replaces the image
func (s *CategoryService) Update(ctx context.Context, id int64, req UpdateCategoryRequest, image *shared.MediaUpload) (*CategoryResponse, error) {
	current, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, categoryLookupError(err)
	}

	patch := req.Patch()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		exists, err := s.categoryRepo.ExistsByName(ctx, *patch.Name, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrCategoryExists
		}
	}

	url, err := s.images.upload(ctx, categoryFolder, image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		patch.ImageURL = &url
	}

	if cols := patch.Columns(); len(cols) > 0 {
		if err := s.categoryRepo.Update(ctx, id, cols); err != nil {
			s.images.deleteLater(ctx, url)
			return nil, err
		}
	}
	if url != "" {
		s.images.deleteLater(ctx, current.ImageURL)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a category that has no products
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return categoryLookupError(err)
	}
	if err := category.CanDelete(); err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.images.deleteLater(ctx, category.ImageURL)

	logger.Enrich(ctx, s.logger).Info("category deleted", zap.Int64("category_id", id))
	return nil
}

func categoryLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFoundf("Category not found")
	}
	return err
}

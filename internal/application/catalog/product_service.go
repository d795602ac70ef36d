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

const (
	productFolder          = "products"
	DefaultProductPageSize = 12
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	images       imageCleaner
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	media shared.MediaStore,
	tasks *background.Runner,
	zapLogger *zap.Logger,
) *ProductService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       newImageCleaner(media, tasks, zapLogger),
		logger:       zapLogger,
	}
}

// List returns one page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Search:   filter.Search,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(DefaultProductPageSize),
		CategoryID: filter.CategoryID,
	})
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListByCategory returns every product of an existing category
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]ProductResponse, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, categoryLookupError(err)
	}
	products, err := s.productRepo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a product in an existing category with an optional image
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, image *shared.MediaUpload) (*ProductResponse, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(req.Name, req.Description, price, req.CategoryID, req.Stock)
	if err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, product.CategoryID); err != nil {
		return nil, categoryLookupError(err)
	}

	url, err := s.images.upload(ctx, productFolder, image)
	if err != nil {
		return nil, err
	}
	product.ImageURL = url

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.images.deleteLater(ctx, url)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("product created",
		zap.Int64("product_id", product.ID),
		zap.Int("stock", product.Stock),
	)
	return s.GetByID(ctx, product.ID)
}

// Update applies a partial update. A replaced image is deleted after the write.
func (s *ProductService) Update(ctx context.Context, id int64, req UpdateProductRequest, image *shared.MediaUpload) (*ProductResponse, error) {
	current, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}

	patch, err := req.Patch()
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.CategoryID != nil && *patch.CategoryID != current.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, *patch.CategoryID); err != nil {
			return nil, categoryLookupError(err)
		}
	}

	url, err := s.images.upload(ctx, productFolder, image)
	if err != nil {
		return nil, err
	}
	if url != "" {
		patch.ImageURL = &url
	}

	if !patch.IsEmpty() {
		if err := s.productRepo.Update(ctx, id, patch.Columns()); err != nil {
			s.images.deleteLater(ctx, url)
			return nil, err
		}
	}
	if url != "" {
		s.images.deleteLater(ctx, current.ImageURL)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a product that no order references, then its image
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return productLookupError(err)
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return productLookupError(err)
	}
	s.images.deleteLater(ctx, product.ImageURL)

	logger.Enrich(ctx, s.logger).Info("product deleted", zap.Int64("product_id", id))
	return nil
}

func productLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFoundf("Product not found")
	}
	return err
}

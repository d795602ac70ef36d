package marketing

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/marketing"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

const DefaultContentPageSize = 10

// CreateContentRequest is the body of POST /contents
type CreateContentRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	URL      string `json:"url" binding:"required,url,max=500"`
	Platform string `json:"platform" binding:"omitempty,max=50"`
}

// UpdateContentRequest is a partial content update
type UpdateContentRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=255"`
	URL      *string `json:"url" binding:"omitempty,url,max=500"`
	Platform *string `json:"platform" binding:"omitempty,max=50"`
}

// ContentListFilter paginates the content listing
type ContentListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ContentResponse represents a content link in API responses
type ContentResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToContentResponse converts a domain content link to its response form
func ToContentResponse(c *marketing.Content) ContentResponse {
	return ContentResponse{
		ID:        c.ID,
		Title:     c.Title,
		URL:       c.URL,
		Platform:  c.Platform,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ContentService manages the social media links shown on the storefront
type ContentService struct {
	repo   marketing.ContentRepository
	logger *zap.Logger
}

// NewContentService creates a new ContentService
func NewContentService(repo marketing.ContentRepository, zapLogger *zap.Logger) *ContentService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &ContentService{repo: repo, logger: zapLogger}
}

// List returns one page of content, newest first
func (s *ContentService) List(ctx context.Context, filter ContentListFilter) ([]ContentResponse, int64, error) {
	items, total, err := s.repo.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}.Normalize(DefaultContentPageSize))
	if err != nil {
		return nil, 0, err
	}
	out := make([]ContentResponse, len(items))
	for i := range items {
		out[i] = ToContentResponse(&items[i])
	}
	return out, total, nil
}

// Get returns a single content link
func (s *ContentService) Get(ctx context.Context, id int64) (*ContentResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, contentLookupError(err)
	}
	resp := ToContentResponse(c)
	return &resp, nil
}

// Create stores a new content link
func (s *ContentService) Create(ctx context.Context, req CreateContentRequest) (*ContentResponse, error) {
	c, err := marketing.NewContent(req.Title, req.URL, req.Platform)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("content created", zap.Int64("content_id", c.ID))
	resp := ToContentResponse(c)
	return &resp, nil
}

// Update applies the present fields and saves the link
func (s *ContentService) Update(ctx context.Context, id int64, req UpdateContentRequest) (*ContentResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, contentLookupError(err)
	}
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.URL != nil {
		c.URL = strings.TrimSpace(*req.URL)
	}
	if req.Platform != nil {
		c.Platform = strings.ToLower(strings.TrimSpace(*req.Platform))
		if c.Platform == "" {
			c.Platform = marketing.PlatformTikTok
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContentResponse(c)
	return &resp, nil
}

// Delete removes a content link
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return contentLookupError(err)
	}
	logger.Enrich(ctx, s.logger).Info("content deleted", zap.Int64("content_id", id))
	return nil
}

func contentLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFoundf("Content not found")
	}
	return err
}

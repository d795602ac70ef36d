// Package marketing holds storefront promotional content.
package marketing

import (
	"context"
	"net/url"
	"strings"

	"github.com/buneko/backend/internal/domain/shared"
)

// PlatformTikTok is the default content platform
const PlatformTikTok = "tiktok"

// Content is a link to a social media post featured on the storefront
type Content struct {
	shared.BaseEntity
	Title    string `gorm:"type:varchar(255);not null"`
	URL      string `gorm:"column:url;type:varchar(500);not null"`
	Platform string `gorm:"type:varchar(50);not null;default:'tiktok'"`
}

// TableName returns the table name for GORM
func (Content) TableName() string {
	return "contents"
}

// NewContent creates a content link
func NewContent(title, link, platform string) (*Content, error) {
	c := &Content{
		Title:    strings.TrimSpace(title),
		URL:      strings.TrimSpace(link),
		Platform: strings.ToLower(strings.TrimSpace(platform)),
	}
	if c.Platform == "" {
		c.Platform = PlatformTikTok
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks title and URL
func (c *Content) Validate() error {
	if c.Title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title is required")
	}
	u, err := url.ParseRequestURI(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return shared.NewDomainError("INVALID_URL", "URL must be a valid http(s) link")
	}
	return nil
}

// ContentRepository defines persistence operations for content links
type ContentRepository interface {
	FindByID(ctx context.Context, id int64) (*Content, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Content, int64, error)
	Create(ctx context.Context, c *Content) error
	Save(ctx context.Context, c *Content) error
	Delete(ctx context.Context, id int64) error
}

package identity

import (
	"context"
	"time"

	"github.com/buneko/backend/internal/domain/shared"
)

// UserFilter narrows user listings
type UserFilter struct {
	shared.Filter
	Role Role
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id int64, columns map[string]any) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context, role Role) (int64, error)
}

package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
)

// Identity persistence errors
var (
	ErrEmailTaken    = shared.NewDomainError("EMAIL_TAKEN", "User already exists with this email")
	ErrUserHasOrders = shared.NewDomainError(shared.ErrConflict.Code, "User has existing orders")
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var user identity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", identity.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAll returns one page of users and the total number of matches
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.Role != "" {
			db = db.Where("users.role = ?", filter.Role)
		}
		if filter.Search != "" {
			p := likePattern(filter.Search)
			db = db.Where("(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?)", p, p)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&identity.User{}).Scopes(where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []identity.User
	if err := r.db.WithContext(ctx).
		Scopes(where, pageScope("users", filter.Filter, UserSortFields)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ExistsByEmail reports whether a user other than excludeID owns email
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&identity.User{}).Where("email = ?", identity.NormalizeEmail(email))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// Update writes the given columns
func (r *GormUserRepository) Update(ctx context.Context, id int64, columns map[string]any) error {
	err := r.db.WithContext(ctx).Model(&identity.User{}).Where("id = ?", id).Updates(columns).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// UpdatePassword stores a new password hash
func (r *GormUserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&identity.User{}).Where("id = ?", id).Update("password", hash).Error
}

// TouchLastLogin records a successful login without bumping updated_at
func (r *GormUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&identity.User{}).Where("id = ?", id).UpdateColumn("last_login", at).Error
}

// Delete removes a user. Orders reference users with RESTRICT.
func (r *GormUserRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&identity.User{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ErrUserHasOrders
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByRole returns the number of users holding role
func (r *GormUserRepository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&identity.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

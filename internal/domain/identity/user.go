package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/buneko/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used for stored customer hashes
const bcryptCost = 10

// Role gates access to admin-only operations
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether the role may use the back office
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is a storefront account
type User struct {
	shared.BaseEntity
	Name            string     `gorm:"type:varchar(50);not null"`
	Email           string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	PasswordHash    string     `gorm:"column:password;type:varchar(255);not null"`
	Role            Role       `gorm:"type:varchar(20);not null;default:'customer'"`
	Phone           string     `gorm:"type:varchar(20)"`
	Address         string     `gorm:"type:text"`
	ProfileImageURL string     `gorm:"column:profile_image_url;type:varchar(500)"`
	LastLogin       *time.Time `gorm:"column:last_login"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a customer account with a hashed password
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCustomer,
	}, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// IsAdmin reports whether the user holds an admin role
func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName checks the display name length
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 50 {
		return shared.NewDomainError("INVALID_NAME", "Name must be between 2 and 50 characters")
	}
	return nil
}

// ValidateEmail checks the email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Please provide a valid email")
	}
	return nil
}

// ValidatePassword requires six characters with upper, lower and digit
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 6 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name            *string
	Email           *string
	Phone           *string
	Address         *string
	ProfileImageURL *string
	Role            *Role
}

// Validate checks every field that is present
func (p UserPatch) Validate() error {
	if p.Name != nil {
		if err := ValidateName(strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := ValidateEmail(NormalizeEmail(*p.Email)); err != nil {
			return err
		}
	}
	if p.Role != nil && !p.Role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Invalid role")
	}
	return nil
}

// Columns returns the column/value pairs to write
func (p UserPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		cols["email"] = NormalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		cols["phone"] = strings.TrimSpace(*p.Phone)
	}
	if p.Address != nil {
		cols["address"] = strings.TrimSpace(*p.Address)
	}
	if p.ProfileImageURL != nil {
		cols["profile_image_url"] = *p.ProfileImageURL
	}
	if p.Role != nil {
		cols["role"] = string(*p.Role)
	}
	return cols
}

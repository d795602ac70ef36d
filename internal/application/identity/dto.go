package identity

import (
	"time"

	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/infrastructure/auth"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,strongpassword"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Address  string `json:"address" binding:"max=500"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User                  UserResponse `json:"user"`
	Token                 string       `json:"token"`
	RefreshToken          string       `json:"refresh_token"`
	TokenType             string       `json:"token_type"`
	ExpiresAt             time.Time    `json:"expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
}

func newAuthResponse(u *identity.User, pair *auth.TokenPair) *AuthResponse {
	return &AuthResponse{
		User:                  ToUserResponse(u),
		Token:                 pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		TokenType:             pair.TokenType,
		ExpiresAt:             pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}
}

// UserResponse represents a user in API responses. The password hash never leaves the service.
type UserResponse struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

// ToUserResponse converts a domain user to its response form
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role.String(),
		Phone:           u.Phone,
		Address:         u.Address,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
		LastLogin:       u.LastLogin,
	}
}

// UserListFilter narrows the admin user listing
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=customer admin superadmin"`
}

// UpdateProfileRequest is a partial update of the caller's own profile
type UpdateProfileRequest struct {
	Name    *string `json:"name" form:"name" binding:"omitempty,min=2,max=50"`
	Email   *string `json:"email" form:"email" binding:"omitempty,email,max=100"`
	Phone   *string `json:"phone" form:"phone" binding:"omitempty,phone"`
	Address *string `json:"address" form:"address" binding:"omitempty,max=500"`
}

// Patch converts the request to a domain patch
func (r UpdateProfileRequest) Patch() identity.UserPatch {
	return identity.UserPatch{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// ChangePasswordRequest is the body of PUT /users/profile/password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,strongpassword"`
}

// UpdateUserRequest is an admin update of any account
type UpdateUserRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=50"`
	Email   *string `json:"email" binding:"omitempty,email,max=100"`
	Phone   *string `json:"phone" binding:"omitempty,phone"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Role    *string `json:"role" binding:"omitempty,oneof=customer admin superadmin"`
}

// Patch converts the request to a domain patch
func (r UpdateUserRequest) Patch() identity.UserPatch {
	patch := identity.UserPatch{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
	if r.Role != nil {
		role := identity.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

// Actor is the authenticated user performing an admin operation
type Actor struct {
	UserID int64
	Role   identity.Role
}

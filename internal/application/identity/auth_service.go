package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/auth"
	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

var (
	// ErrEmailTaken is returned when another account already uses the email
	ErrEmailTaken = shared.NewDomainError("EMAIL_TAKEN", "User already exists with this email")
	// ErrInvalidCredentials hides whether the email or the password was wrong
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	// ErrTokenRevoked is returned when a refresh token belongs to a revoked session
	ErrTokenRevoked = shared.NewDomainError(shared.ErrUnauthorized.Code, "Token has been revoked")
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service. A nil blacklist
// turns logout into a client-side operation.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	zapLogger *zap.Logger,
) *AuthService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     zapLogger,
		now:        time.Now,
	}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	user, err := identity.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	user.Phone = req.Phone
	user.Address = req.Address

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("user registered", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials and returns a fresh token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	log := logger.Enrich(ctx, s.logger)

	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		log.Warn("invalid password attempt", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Error("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	log.Info("user logged in", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

// Logout revokes the presented access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil {
		return nil
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// Me returns the profile of the authenticated user
func (s *AuthService) Me(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Refresh exchanges a refresh token for a new pair carrying the user's current role
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Enrich(ctx, s.logger).Warn("refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "Refresh token has expired")
		}
		return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "Invalid refresh token")
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrUnauthorized.Code, "User no longer exists")
		}
		return nil, err
	}
	return s.issue(user)
}

// EnsureSuperAdmin creates the configured superadmin when no account uses its email.
// An existing account is left untouched.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.SuperAdminEmail == "" {
		return nil
	}
	_, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(cfg.SuperAdminEmail))
	if err == nil {
		s.logger.Info("superadmin already present", zap.String("email", cfg.SuperAdminEmail))
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	name := cfg.SuperAdminName
	if name == "" {
		name = "Super Admin"
	}
	user, err := identity.NewUser(name, cfg.SuperAdminEmail, cfg.SuperAdminPassword)
	if err != nil {
		return err
	}
	user.Role = identity.RoleSuperAdmin
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("superadmin created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
	})
	if err != nil {
		return nil, err
	}
	return newAuthResponse(user, pair), nil
}

func userLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFoundf("User not found")
	}
	return err
}

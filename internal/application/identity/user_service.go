package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/auth"
	"github.com/buneko/backend/internal/infrastructure/logger"
)

const (
	profileFolder       = "profiles"
	DefaultUserPageSize = 20
)

var (
	// ErrInvalidPassword is returned when the current password does not match
	ErrInvalidPassword = shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	// ErrNothingToUpdate is returned for an update without any field
	ErrNothingToUpdate = shared.Validationf("No fields to update")
	// ErrCannotDeleteSelf protects the acting admin's own account
	ErrCannotDeleteSelf = shared.NewDomainError(shared.ErrForbidden.Code, "You cannot delete your own account")
	// ErrAdminGrantForbidden is returned when a plain admin hands out admin access
	ErrAdminGrantForbidden = shared.NewDomainError(shared.ErrForbidden.Code, "Only a superadmin can grant or revoke admin access")
)

// AccountNotifier tells a user their back-office access changed
type AccountNotifier interface {
	NotifyAccountStatus(ctx context.Context, user *identity.User, active bool) error
}

// UserService manages profiles and admin account maintenance
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	media     shared.MediaStore
	tasks     *background.Runner
	notifier  AccountNotifier
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewUserService creates a new UserService. tokenTTL is the longest lifetime
// of an issued token and bounds how long a revocation is remembered.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	media shared.MediaStore,
	tasks *background.Runner,
	tokenTTL time.Duration,
	zapLogger *zap.Logger,
) *UserService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if tasks == nil {
		tasks = background.NewRunner(zapLogger)
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		media:     media,
		tasks:     tasks,
		tokenTTL:  tokenTTL,
		logger:    zapLogger,
	}
}

// SetNotifier sets the account notifier
func (s *UserService) SetNotifier(notifier AccountNotifier) {
	s.notifier = notifier
}

// List returns one page of users, newest first
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	users, total, err := s.userRepo.FindAll(ctx, identity.UserFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(DefaultUserPageSize),
		Role:   identity.Role(filter.Role),
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out, total, nil
}

// Get returns a single user
func (s *UserService) Get(ctx context.Context, id int64) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies a partial update of the caller's profile and
// optionally replaces the profile image
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest, image *shared.MediaUpload) (*UserResponse, error) {
	current, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	patch := req.Patch()
	if err := s.checkPatch(ctx, userID, patch); err != nil {
		return nil, err
	}
	if image == nil && len(patch.Columns()) == 0 {
		return nil, ErrNothingToUpdate
	}

	var url string
	if image != nil {
		if s.media == nil {
			return nil, shared.ErrUnavailable
		}
		if url, err = s.media.Upload(ctx, profileFolder, *image); err != nil {
			return nil, err
		}
		patch.ProfileImageURL = &url
	}

	if err := s.userRepo.Update(ctx, userID, patch.Columns()); err != nil {
		s.deleteImageLater(ctx, url)
		return nil, translateEmailTaken(err)
	}
	if url != "" {
		s.deleteImageLater(ctx, current.ProfileImageURL)
	}

	return s.Get(ctx, userID)
}

// ChangePassword replaces the password after verifying the current one
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if !user.VerifyPassword(req.CurrentPassword) {
		return ErrInvalidPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, user.PasswordHash); err != nil {
		return err
	}

	logger.Enrich(ctx, s.logger).Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// UpdateUser lets an admin edit any account. Only a superadmin may move an
// account into or out of the admin roles. A role change revokes the
// account's tokens so the new role applies on the next sign-in.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id int64, req UpdateUserRequest) (*UserResponse, error) {
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	patch := req.Patch()
	if err := s.checkPatch(ctx, id, patch); err != nil {
		return nil, err
	}
	roleChanged := patch.Role != nil && *patch.Role != target.Role
	if roleChanged && actor.Role != identity.RoleSuperAdmin &&
		(patch.Role.IsAdmin() || target.Role.IsAdmin()) {
		return nil, ErrAdminGrantForbidden
	}
	if target.Role == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin {
		return nil, shared.ErrForbidden
	}
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.userRepo.Update(ctx, id, cols); err != nil {
		return nil, translateEmailTaken(err)
	}

	log := logger.Enrich(ctx, s.logger)
	if roleChanged {
		log.Info("user role changed",
			zap.Int64("user_id", id),
			zap.String("from", target.Role.String()),
			zap.String("to", patch.Role.String()),
		)
		if s.blacklist != nil {
			if err := s.blacklist.InvalidateUser(ctx, id, s.tokenTTL); err != nil {
				log.Error("failed to revoke tokens after role change", zap.Int64("user_id", id), zap.Error(err))
			}
		}
		if patch.Role.IsAdmin() != target.Role.IsAdmin() {
			s.notifyAccountStatus(ctx, id, patch.Role.IsAdmin())
		}
	}

	return s.Get(ctx, id)
}

// Delete removes an account. Admins cannot remove themselves and accounts
// with orders are kept.
func (s *UserService) Delete(ctx context.Context, actor Actor, id int64) error {
	if actor.UserID == id {
		return ErrCannotDeleteSelf
	}
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return userLookupError(err)
	}
	if target.Role == identity.RoleSuperAdmin && actor.Role != identity.RoleSuperAdmin {
		return shared.ErrForbidden
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userLookupError(err)
	}

	log := logger.Enrich(ctx, s.logger)
	if s.blacklist != nil {
		if err := s.blacklist.InvalidateUser(ctx, id, s.tokenTTL); err != nil {
			log.Error("failed to revoke tokens of deleted user", zap.Int64("user_id", id), zap.Error(err))
		}
	}
	s.deleteImageLater(ctx, target.ProfileImageURL)

	log.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) checkPatch(ctx context.Context, userID int64, patch identity.UserPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if patch.Email == nil {
		return nil
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, identity.NormalizeEmail(*patch.Email), userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}
	return nil
}

// notifyAccountStatus reloads the user after commit so the mail goes to the saved address
func (s *UserService) notifyAccountStatus(ctx context.Context, userID int64, active bool) {
	if s.notifier == nil {
		return
	}
	s.tasks.Go(ctx, "account-status-email", func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		return s.notifier.NotifyAccountStatus(ctx, user, active)
	})
}

func (s *UserService) deleteImageLater(ctx context.Context, url string) {
	if url == "" || s.media == nil {
		return
	}
	s.tasks.Go(ctx, "delete-image", func(ctx context.Context) error {
		return s.media.Delete(ctx, url)
	})
}

func translateEmailTaken(err error) error {
	if errors.Is(err, ErrEmailTaken) {
		return ErrEmailTaken
	}
	return err
}

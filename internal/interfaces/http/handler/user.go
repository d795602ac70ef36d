package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityapp "github.com/buneko/backend/internal/application/identity"
	"github.com/buneko/backend/internal/interfaces/http/middleware"
)

// UserHandler handles profile and admin account endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns one page of accounts, optionally filtered by role.
// GET /users
func (h *UserHandler) List(c *gin.Context) {
	var filter identityapp.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	users, total, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageMeta(filter.Page, filter.PageSize, identityapp.DefaultUserPageSize)
	h.SuccessWithMeta(c, users, total, page, size)
}

// Get returns one account.
// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile edits the caller's own profile. Accepts JSON or a multipart
// form with an optional image.
// PUT /users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}
	image, ok := h.imageUpload(c)
	if !ok {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword replaces the caller's password after checking the current one.
// PUT /users/profile/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Password updated successfully")
}

// Update edits any account. Role changes to or from admin need a superadmin.
// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req identityapp.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, http.StatusOK, "User updated successfully", user)
}

// Delete removes an account other than the caller's.
// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "User deleted successfully")
}

func (h *UserHandler) actor(c *gin.Context) (identityapp.Actor, bool) {
	id, ok := h.currentUser(c)
	if !ok {
		return identityapp.Actor{}, false
	}
	return identityapp.Actor{UserID: id, Role: middleware.GetUserRole(c)}, true
}

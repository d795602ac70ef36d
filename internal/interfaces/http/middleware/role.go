package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/interfaces/http/dto"
)

// RequireRole allows the request through only when the token role is one of
// roles. It must run after JWTAuth.
func RequireRole(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !slices.Contains(roles, GetUserRole(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Admin access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireAdmin admits admins and superadmins
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(identity.RoleAdmin, identity.RoleSuperAdmin)
}

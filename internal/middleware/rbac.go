package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
)

// RequireRole checks that the JWT role is one of roles. It guards whole
// route groups; per-target user checks happen in the user service.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrStaffAccessOnly)
	}
}

// RequireStaff allows the roles in model.StaffRoles.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(model.StaffRoles...)
}

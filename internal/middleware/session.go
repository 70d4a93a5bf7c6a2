package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
)

// ContextKeyUser is the Gin context key for the stored account behind the token.
const ContextKeyUser = "user"

// UserLookup resolves the account a token was issued to.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// RequireActiveUser checks the token's account against storage. Deleted or
// deactivated accounts are rejected even while their token is unexpired, and
// the stored role replaces the role in the token. Runs after RequireJWT or
// RequireWSAuth.
func RequireActiveUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrRecordNotFound) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
				return
			}
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if !user.IsActive() {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}

		session := *claims
		session.Role = user.Role
		c.Set(ContextKeyClaims, &session)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

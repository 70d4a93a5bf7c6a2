package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/middleware"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	users *service.UserService
	gate  *access.Gate
	log   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *service.UserService, gate *access.Gate, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		gate:  gate,
		log:   log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates email + password, returns a JWT and the roles the user may manage.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		failService(c, h.log, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{
		Token:      token,
		User:       *user,
		Manageable: h.gate.Manageable(user.Role),
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":       user,
		"manageable": h.gate.Manageable(user.Role),
	})
}

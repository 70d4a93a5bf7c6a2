package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/middleware"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/validator"
)

// UserHandler handles account management. Role checks against the target
// account are made by the user service, not here.
type UserHandler struct {
	users *service.UserService
	log   zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		users: users,
		log:   log.With().Str("component", "user_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/users
// Each row carries "manageable" for the caller's role.
func (h *UserHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rows, err := h.users.List(c.Request.Context(), claims.Role)
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}
	response.SuccessList(c, http.StatusOK, rows, len(rows))
}

// Create godoc
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateUserRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.Create(c.Request.Context(), claims.Role, req)
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusCreated, user)
}

// UpdateStatus godoc
// PATCH /api/v1/users/:id/status
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UpdateUserStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.users.UpdateStatus(c.Request.Context(), claims.Role, c.Param("id"), req.Status)
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// Delete godoc
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.users.Delete(c.Request.Context(), claims.Role, c.Param("id")); err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

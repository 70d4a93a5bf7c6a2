package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/model"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/store"
)

// failService maps a service error onto the API envelope. Errors with no
// specific mapping are logged and reported with fallback.
func failService(c *gin.Context, log zerolog.Logger, err error, fallback response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, access.ErrPermissionDenied):
		response.Fail(c, http.StatusForbidden, response.ErrPermissionDenied)
	case errors.Is(err, model.ErrInvalidStatus):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{model.FieldStatus: model.ErrInvalidStatus.Error()})
	case errors.Is(err, service.ErrInvalidRole):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidRole)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrAlreadyBootstrapped):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyBootstrapped)
	case errors.Is(err, store.ErrQuotaExceeded):
		response.Fail(c, http.StatusInsufficientStorage, response.ErrStorageQuotaExceeded)
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Str("request_id", response.RequestID(c)).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, fallback)
	}
}

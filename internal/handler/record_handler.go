package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/lms-admin-mock/internal/response"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RecordHandler serves one mock record type (exams or webinars).
type RecordHandler struct {
	records *service.RecordService
	export  *service.ExportService
	log     zerolog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(records *service.RecordService, export *service.ExportService, log zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		records: records,
		export:  export,
		log:     log.With().Str("component", "record_handler").Str("kind", records.Kind()).Logger(),
	}
}

// List godoc
// GET /api/v1/{kind}
// Returns every record, newest first.
func (h *RecordHandler) List(c *gin.Context) {
	records, err := h.records.List(c.Request.Context())
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}
	response.SuccessList(c, http.StatusOK, records, len(records))
}

// Get godoc
// GET /api/v1/{kind}/:id
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// Create godoc
// POST /api/v1/{kind}
// Body is any JSON object. id and dateCreated are assigned by the server.
func (h *RecordHandler) Create(c *gin.Context) {
	fields, errs := validator.BindPayload(c)
	if errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, errs)
		return
	}

	record, err := h.records.Create(c.Request.Context(), fields)
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusCreated, record)
}

// Update godoc
// PATCH /api/v1/{kind}/:id
// Shallow-merges the body over the record.
func (h *RecordHandler) Update(c *gin.Context) {
	patch, errs := validator.BindPayload(c)
	if errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, errs)
		return
	}

	record, err := h.records.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusOK, record)
}

// Delete godoc
// DELETE /api/v1/{kind}/:id
// Returns the remaining records. Unknown ids succeed without a write.
func (h *RecordHandler) Delete(c *gin.Context) {
	remaining, err := h.records.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.SuccessList(c, http.StatusOK, remaining, len(remaining))
}

// ListSchedules godoc
// GET /api/v1/{kind}/schedules
func (h *RecordHandler) ListSchedules(c *gin.Context) {
	entries, err := h.records.ListSchedules(c.Request.Context())
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}
	response.SuccessList(c, http.StatusOK, entries, len(entries))
}

// Schedule godoc
// POST /api/v1/{kind}/schedules
// Referenced record ids in the body are stored as given.
func (h *RecordHandler) Schedule(c *gin.Context) {
	payload, errs := validator.BindPayload(c)
	if errs != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, errs)
		return
	}

	entry, err := h.records.Schedule(c.Request.Context(), payload)
	if err != nil {
		failService(c, h.log, err, response.ErrStorageWriteFailed)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// Export godoc
// GET /api/v1/{kind}/export
// Downloads every record as an xlsx workbook.
func (h *RecordHandler) Export(c *gin.Context) {
	records, err := h.records.List(c.Request.Context())
	if err != nil {
		failService(c, h.log, err, response.ErrInternal)
		return
	}

	var buf bytes.Buffer
	if err := h.export.WriteRecords(&buf, h.records.Kind(), records); err != nil {
		h.log.Error().Err(err).Msg("Export failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", h.records.Kind(), time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

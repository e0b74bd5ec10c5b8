package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-engine/internal/dto"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	"github.com/noah-isme/sma-schedule-engine/internal/service"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
	"github.com/noah-isme/sma-schedule-engine/pkg/response"
)

// maxImportBytes bounds the CSV document accepted by Import.
const maxImportBytes = 5 << 20

type scheduleTransferService interface {
	Export(ctx context.Context, filter models.ScheduleFilter, format service.ExportFormat) (*service.ExportResult, error)
	Import(ctx context.Context, r io.Reader) ([]models.ScheduleEntry, error)
}

// ScheduleTransferHandler serves CSV/PDF export and CSV import.
type ScheduleTransferHandler struct {
	service scheduleTransferService
	catalog catalogResolver
}

// NewScheduleTransferHandler constructs the handler.
func NewScheduleTransferHandler(svc scheduleTransferService, catalog catalogResolver) *ScheduleTransferHandler {
	return &ScheduleTransferHandler{service: svc, catalog: catalog}
}

// Export godoc
// @Summary Export schedule entries
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param subject_id query string false "Filter by subject"
// @Param instructor_id query string false "Filter by instructor"
// @Param room_id query string false "Filter by room"
// @Param weekday query string false "ISO weekday number or name"
// @Param academic_year query int false "Filter by academic year"
// @Param academic_period query int false "Filter by academic period"
// @Param status query string false "ACTIVE or CANCELLED"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedules/export [get]
func (h *ScheduleTransferHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := parseScheduleFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Export(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}

// Import godoc
// @Summary Import schedule entries from CSV
// @Description Accepts a multipart "file" field or a raw text/csv body. Either every row is created or none is.
// @Tags Schedules
// @Accept multipart/form-data
// @Accept text/csv
// @Produce json
// @Param file formData file false "CSV document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/import [post]
func (h *ScheduleTransferHandler) Import(c *gin.Context) {
	reader, closeFn, err := importSource(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	entries, err := h.service.Import(c.Request.Context(), reader)
	if err != nil {
		response.Error(c, err)
		return
	}
	catalog := h.catalog.Resolve(c.Request.Context(), entries...)
	response.Created(c, dto.BulkCreateScheduleResult{Created: len(entries), Items: dto.NewScheduleResponses(entries, catalog)})
}

func importSource(c *gin.Context) (io.Reader, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field is required")
		}
		file, err := header.Open()
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read uploaded file")
		}
		return file, func() { _ = file.Close() }, nil
	}
	if c.Request.Body == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "csv body is required")
	}
	return c.Request.Body, func() {}, nil
}

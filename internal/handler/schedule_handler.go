package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-engine/internal/dto"
	"github.com/noah-isme/sma-schedule-engine/internal/middleware"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
	"github.com/noah-isme/sma-schedule-engine/pkg/response"
)

type scheduleService interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ScheduleEntry, error)
	Create(ctx context.Context, req dto.CreateScheduleRequest) (*models.ScheduleEntry, error)
	BulkCreate(ctx context.Context, req dto.BulkCreateScheduleRequest) ([]models.ScheduleEntry, error)
	Update(ctx context.Context, id string, req dto.UpdateScheduleRequest) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id string) error
}

type conflictService interface {
	FindConflicts(ctx context.Context, id string) ([]models.ConflictRecord, error)
	CheckProposed(ctx context.Context, proposed models.ScheduleEntry) ([]models.ConflictRecord, error)
}

type catalogResolver interface {
	Resolve(ctx context.Context, entries ...models.ScheduleEntry) *models.CatalogIndex
	ResolveConflicts(ctx context.Context, records []models.ConflictRecord) *models.CatalogIndex
}

// ScheduleHandler manages schedule and conflict endpoints.
type ScheduleHandler struct {
	service   scheduleService
	conflicts conflictService
	catalog   catalogResolver
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService, conflicts conflictService, catalog catalogResolver) *ScheduleHandler {
	return &ScheduleHandler{service: svc, conflicts: conflicts, catalog: catalog}
}

// List godoc
// @Summary List schedule entries
// @Tags Schedules
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param instructor_id query string false "Filter by instructor"
// @Param room_id query string false "Filter by room"
// @Param weekday query string false "ISO weekday number or name"
// @Param academic_year query int false "Filter by academic year"
// @Param academic_period query int false "Filter by academic period"
// @Param status query string false "ACTIVE or CANCELLED"
// @Param page query int false "Page"
// @Param page_size query int false "Page size (max 100)"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter, err := parseScheduleFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	catalog := h.catalog.Resolve(c.Request.Context(), entries...)
	response.JSON(c, http.StatusOK, dto.NewScheduleResponses(entries, catalog), pagination)
}

// Get godoc
// @Summary Get a schedule entry
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	catalog := h.catalog.Resolve(c.Request.Context(), *entry)
	response.JSON(c, http.StatusOK, dto.NewScheduleResponse(*entry, catalog), nil)
}

// Create godoc
// @Summary Create a schedule entry
// @Description Conflicts are advisory: the entry is stored and any clashes are returned in meta.conflicts.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachAdvisoryConflicts(c, *entry)
	catalog := h.catalog.Resolve(c.Request.Context(), *entry)
	response.Created(c, dto.NewScheduleResponse(*entry, catalog), middleware.ExtractMeta(c))
}

// BulkCreate godoc
// @Summary Bulk create schedule entries
// @Description All items are written or none is.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.BulkCreateScheduleRequest true "Bulk payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/bulk [post]
func (h *ScheduleHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	entries, err := h.service.BulkCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	catalog := h.catalog.Resolve(c.Request.Context(), entries...)
	response.Created(c, dto.BulkCreateScheduleResult{Created: len(entries), Items: dto.NewScheduleResponses(entries, catalog)})
}

// Update godoc
// @Summary Partially update a schedule entry
// @Description Omitted fields are unchanged; room_id null unassigns the room. CANCELLED entries cannot be reactivated.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.UpdateScheduleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [patch]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.attachAdvisoryConflicts(c, *entry)
	catalog := h.catalog.Resolve(c.Request.Context(), *entry)
	response.JSON(c, http.StatusOK, dto.NewScheduleResponse(*entry, catalog), nil, middleware.ExtractMeta(c))
}

// Delete godoc
// @Summary Delete a schedule entry
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary Conflicts for a stored entry
// @Tags Conflicts
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /schedules/{id}/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	id := c.Param("id")
	records, err := h.conflicts.FindConflicts(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.conflictReport(c, id, records), nil)
}

// CheckProposed godoc
// @Summary Conflicts a proposed entry would introduce
// @Description Nothing is stored. Supply id to exclude the entry being edited.
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body dto.ProposedScheduleRequest true "Proposed entry"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /schedules/conflicts/check [post]
func (h *ScheduleHandler) CheckProposed(c *gin.Context) {
	var req dto.ProposedScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	records, err := h.conflicts.CheckProposed(c.Request.Context(), req.ToEntry())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.conflictReport(c, req.ID, records), nil)
}

func (h *ScheduleHandler) conflictReport(c *gin.Context, id string, records []models.ConflictRecord) dto.ConflictReport {
	catalog := h.catalog.ResolveConflicts(c.Request.Context(), records)
	return dto.ConflictReport{EntryID: id, Count: len(records), Conflicts: dto.NewConflictResponses(records, catalog)}
}

// attachAdvisoryConflicts reports clashes for a just-written entry in the
// response meta. A failed scan never fails the write.
func (h *ScheduleHandler) attachAdvisoryConflicts(c *gin.Context, entry models.ScheduleEntry) {
	if h.conflicts == nil {
		return
	}
	records, err := h.conflicts.CheckProposed(c.Request.Context(), entry)
	if err != nil {
		_ = c.Error(err)
		middleware.SetMeta(c, "conflicts_checked", false)
		return
	}
	middleware.SetMeta(c, "conflicts_checked", true)
	middleware.SetMeta(c, "conflicts", dto.NewConflictResponses(records, nil))
}

func parseScheduleFilter(c *gin.Context) (models.ScheduleFilter, error) {
	filter := models.ScheduleFilter{
		SubjectID:    strings.TrimSpace(c.Query("subject_id")),
		InstructorID: strings.TrimSpace(c.Query("instructor_id")),
		RoomID:       strings.TrimSpace(c.Query("room_id")),
		Status:       models.ScheduleStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		SortBy:       c.Query("sort"),
		SortOrder:    c.Query("order"),
	}

	if raw := c.Query("weekday"); raw != "" {
		day, err := models.ParseWeekday(raw)
		if err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "weekday must be 1-7 or a day name")
		}
		filter.Weekday = day
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"academic_year", &filter.AcademicYear},
		{"academic_period", &filter.AcademicPeriod},
		{"page", &filter.Page},
		{"page_size", &filter.PageSize},
	}
	for _, field := range ints {
		raw := c.Query(field.key)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, field.key+" must be a non-negative integer")
		}
		*field.dst = value
	}
	return filter, nil
}

func parseTermQuery(c *gin.Context) (*models.Term, error) {
	rawYear, rawPeriod := c.Query("academic_year"), c.Query("academic_period")
	if rawYear == "" && rawPeriod == "" {
		return nil, nil
	}
	year, errYear := strconv.Atoi(rawYear)
	period, errPeriod := strconv.Atoi(rawPeriod)
	if errYear != nil || errPeriod != nil || year <= 0 || period <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year and academic_period must be supplied together as positive integers")
	}
	return &models.Term{AcademicYear: year, AcademicPeriod: period}, nil
}

// bindJSON decodes the request body into dest. Field decoders that fail with a
// domain error, such as a malformed clock time, keep that error's code.
func bindJSON(c *gin.Context, dest interface{}) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		response.Error(c, appErr)
		return false
	}
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
	return false
}

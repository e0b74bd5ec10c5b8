package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/dto"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error)
	ListActive(ctx context.Context, filter models.ActiveScheduleFilter) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	BulkCreate(ctx context.Context, entries []models.ScheduleEntry) (int, error)
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
}

// occupancyCachePattern matches every cached occupancy report.
const occupancyCachePattern = "occupancy:*"

type statsRefresher interface {
	Refresh(terms ...models.Term)
}

// ScheduleService owns the schedule store operations. It does not check
// conflicts; callers decide whether to consult ConflictService.
type ScheduleService struct {
	repo      scheduleRepository
	cache     *CacheService
	refresher statsRefresher
	validator *validator.Validate
	logger    *zap.Logger
}

// ScheduleServiceOption configures the service.
type ScheduleServiceOption func(*ScheduleService)

// WithStatsRefresher recomputes occupancy reports after each mutation.
func WithStatsRefresher(refresher statsRefresher) ScheduleServiceOption {
	return func(s *ScheduleService) {
		s.refresher = refresher
	}
}

// NewScheduleService instantiates ScheduleService. cache may be nil.
func NewScheduleService(repo scheduleRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, opts ...ScheduleServiceOption) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{repo: repo, cache: cache, validator: validate, logger: logger}
	svc.validator.RegisterValidation("schedule_status", func(fl validator.FieldLevel) bool {
		return models.ScheduleStatus(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).Valid()
	})
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// List returns a page of entries with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, *models.Pagination, error) {
	if filter.Weekday != 0 && !filter.Weekday.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "weekday must be between 1 and 7")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be ACTIVE or CANCELLED")
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	page, size := filter.PageParams()
	return entries, models.NewPagination(page, size, total), nil
}

// Get loads an entry by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return entry, nil
}

// Create validates and stores a new ACTIVE entry.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateScheduleRequest) (*models.ScheduleEntry, error) {
	entry, err := s.buildEntry(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidateStats(ctx, entry.Term)
	s.logger.Info("schedule entry created", zap.String("id", entry.ID), zap.String("slot", entry.TimeSlot.String()))
	return &entry, nil
}

// BulkCreate validates every item first and then writes them all in one
// transaction. Nothing is written if any item is invalid or any insert fails.
func (s *ScheduleService) BulkCreate(ctx context.Context, req dto.BulkCreateScheduleRequest) ([]models.ScheduleEntry, error) {
	if len(req.Items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "items must contain at least one schedule")
	}

	entries := make([]models.ScheduleEntry, 0, len(req.Items))
	for i, item := range req.Items {
		entry, err := s.buildEntry(item)
		if err != nil {
			appErr := appErrors.FromError(err)
			return nil, appErrors.Wrap(err, appErr.Code, appErr.Status, fmt.Sprintf("item %d: %s", i, appErr.Message))
		}
		entries = append(entries, entry)
	}

	count, err := s.repo.BulkCreate(ctx, entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bulk create schedules")
	}
	terms := make([]models.Term, 0, count)
	for _, entry := range entries[:count] {
		terms = append(terms, entry.Term)
	}
	s.invalidateStats(ctx, terms...)
	s.logger.Info("schedule entries bulk created", zap.Int("count", count))
	return entries[:count], nil
}

// Update applies the supplied fields to an existing entry. CANCELLED is
// terminal: an attempt to reactivate a cancelled entry is rejected.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.UpdateScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no fields to update")
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}

	patch := req.ToPatch()
	if patch.Status != nil && entry.Status == models.ScheduleStatusCancelled && *patch.Status != models.ScheduleStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cancelled schedules cannot be reactivated; create a new entry instead")
	}

	previousTerm := entry.Term
	patch.Apply(entry)
	if err := s.validateEntry(*entry); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, mapLookupError(err)
	}
	s.invalidateStats(ctx, previousTerm, entry.Term)
	return entry, nil
}

// Delete removes an entry. Deleting an unknown or already deleted id fails with NotFound.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapLookupError(err)
	}
	s.invalidateStats(ctx)
	s.logger.Info("schedule entry deleted", zap.String("id", id))
	return nil
}

func (s *ScheduleService) buildEntry(req dto.CreateScheduleRequest) (models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ScheduleEntry{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	entry := req.ToEntry()
	if err := s.validateEntry(entry); err != nil {
		return models.ScheduleEntry{}, err
	}
	return entry, nil
}

// validateEntry checks the invariants a stored entry must hold after create or patch.
func (s *ScheduleService) validateEntry(entry models.ScheduleEntry) error {
	var missing []string
	if strings.TrimSpace(entry.SubjectID) == "" {
		missing = append(missing, "subject_id")
	}
	if strings.TrimSpace(entry.InstructorID) == "" {
		missing = append(missing, "instructor_id")
	}
	if entry.AcademicYear <= 0 {
		missing = append(missing, "academic_year")
	}
	if entry.AcademicPeriod <= 0 {
		missing = append(missing, "academic_period")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if !entry.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "status must be ACTIVE or CANCELLED")
	}
	return entry.TimeSlot.Validate()
}

// invalidateStats drops every cached occupancy report; terms name the
// reports worth recomputing ahead of the next request.
func (s *ScheduleService) invalidateStats(ctx context.Context, terms ...models.Term) {
	s.cache.Invalidate(ctx, occupancyCachePattern)
	if s.refresher != nil && s.cache.Enabled() {
		s.refresher.Refresh(terms...)
	}
}

func mapLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to access schedule")
}

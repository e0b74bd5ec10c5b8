package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

type activeScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error)
	ListActive(ctx context.Context, filter models.ActiveScheduleFilter) ([]models.ScheduleEntry, error)
}

// ConflictService reports instructor and room clashes. Conflicts are data:
// finding some is a successful result. Each call scans the target term's
// active entries on the target weekday, so cost grows linearly with that set.
type ConflictService struct {
	repo    activeScheduleReader
	metrics *MetricsService
	logger  *zap.Logger
}

// NewConflictService constructs a conflict service. metrics may be nil.
func NewConflictService(repo activeScheduleReader, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, metrics: metrics, logger: logger}
}

// FindConflicts reports clashes between a stored entry and the other active
// entries of its term. Unknown ids fail with NotFound.
func (s *ConflictService) FindConflicts(ctx context.Context, id string) ([]models.ConflictRecord, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, s.scanFailure(err, id)
	}
	return s.scan(ctx, "existing", *target)
}

// CheckProposed runs the same scan against an entry that has not been stored.
// A proposal carrying an id excludes that stored entry from the candidates.
func (s *ConflictService) CheckProposed(ctx context.Context, proposed models.ScheduleEntry) ([]models.ConflictRecord, error) {
	if proposed.Status == "" {
		proposed.Status = models.ScheduleStatusActive
	}
	if err := proposed.TimeSlot.Validate(); err != nil {
		return nil, err
	}
	return s.scan(ctx, "proposed", proposed)
}

func (s *ConflictService) scan(ctx context.Context, mode string, target models.ScheduleEntry) ([]models.ConflictRecord, error) {
	if !target.IsActive() {
		return []models.ConflictRecord{}, nil
	}

	start := time.Now()
	term := target.Term
	candidates, err := s.repo.ListActive(ctx, models.ActiveScheduleFilter{Term: &term, Weekday: target.Weekday})
	if err != nil {
		return nil, s.scanFailure(err, target.ID)
	}

	records := models.DetectConflicts(target, candidates)
	s.metrics.ObserveConflictScan(mode, records, time.Since(start))
	if len(records) > 0 {
		s.logger.Debug("schedule conflicts detected",
			zap.String("mode", mode),
			zap.String("entry_id", target.ID),
			zap.Int("count", len(records)))
	}
	return records, nil
}

func (s *ConflictService) scanFailure(err error, id string) error {
	s.metrics.RecordConflictScanFailure()
	s.logger.Error("conflict scan failed", zap.String("entry_id", id), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrConflictDetection.Code, appErrors.ErrConflictDetection.Status, appErrors.ErrConflictDetection.Message)
}

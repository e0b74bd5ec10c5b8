package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

type catalogRepository interface {
	Lookup(ctx context.Context, refs models.CatalogRefs) (*models.CatalogIndex, error)
}

// CatalogService enriches schedule responses with display data from the
// external catalog. Lookups never validate ids and never fail a request.
type CatalogService struct {
	repo   catalogRepository
	logger *zap.Logger
}

// NewCatalogService constructs a catalog service. repo may be nil.
func NewCatalogService(repo catalogRepository, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, logger: logger}
}

// Resolve returns display data for the ids referenced by entries. On lookup
// failure the error is logged and an empty index is returned.
func (s *CatalogService) Resolve(ctx context.Context, entries ...models.ScheduleEntry) *models.CatalogIndex {
	if s == nil || s.repo == nil {
		return models.NewCatalogIndex()
	}
	refs := models.RefsOf(entries...)
	if refs.Empty() {
		return models.NewCatalogIndex()
	}
	index, err := s.repo.Lookup(ctx, refs)
	if err != nil {
		s.logger.Warn("catalog lookup failed", zap.Int("entries", len(entries)), zap.Error(err))
		return models.NewCatalogIndex()
	}
	return index
}

// ResolveConflicts returns display data for both sides of every record.
func (s *CatalogService) ResolveConflicts(ctx context.Context, records []models.ConflictRecord) *models.CatalogIndex {
	entries := make([]models.ScheduleEntry, 0, len(records)*2)
	for _, record := range records {
		entries = append(entries, record.Entry, record.Conflicting)
	}
	return s.Resolve(ctx, entries...)
}

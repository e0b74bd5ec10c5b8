package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

// CatalogRepository reads display data for the subjects, instructors and rooms
// referenced by schedule entries. The catalog tables are owned elsewhere; this
// repository never writes to them.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Lookup fetches catalog rows for refs in at most three queries.
func (r *CatalogRepository) Lookup(ctx context.Context, refs models.CatalogRefs) (*models.CatalogIndex, error) {
	index := models.NewCatalogIndex()
	if refs.Empty() {
		return index, nil
	}

	if len(refs.SubjectIDs) > 0 {
		var subjects []models.CatalogSubject
		if err := r.db.SelectContext(ctx, &subjects, `SELECT id, code, name FROM subjects WHERE id = ANY($1)`, pq.Array(refs.SubjectIDs)); err != nil {
			return nil, fmt.Errorf("lookup subjects: %w", err)
		}
		for _, s := range subjects {
			index.Subjects[s.ID] = s
		}
	}

	if len(refs.InstructorIDs) > 0 {
		var instructors []models.CatalogInstructor
		if err := r.db.SelectContext(ctx, &instructors, `SELECT id, full_name, email FROM instructors WHERE id = ANY($1)`, pq.Array(refs.InstructorIDs)); err != nil {
			return nil, fmt.Errorf("lookup instructors: %w", err)
		}
		for _, i := range instructors {
			index.Instructors[i.ID] = i
		}
	}

	if len(refs.RoomIDs) > 0 {
		var rooms []models.CatalogRoom
		if err := r.db.SelectContext(ctx, &rooms, `SELECT id, name, capacity FROM rooms WHERE id = ANY($1)`, pq.Array(refs.RoomIDs)); err != nil {
			return nil, fmt.Errorf("lookup rooms: %w", err)
		}
		for _, room := range rooms {
			index.Rooms[room.ID] = room
		}
	}

	return index, nil
}

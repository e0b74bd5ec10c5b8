package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

const scheduleColumns = "id, subject_id, instructor_id, room_id, weekday, start_time, end_time, academic_year, academic_period, status, notes, created_at, updated_at"

const insertScheduleQuery = `INSERT INTO schedule_entries (id, subject_id, instructor_id, room_id, weekday, start_time, end_time, academic_year, academic_period, status, notes, created_at, updated_at) VALUES (:id, :subject_id, :instructor_id, :room_id, :weekday, :start_time, :end_time, :academic_year, :academic_period, :status, :notes, :created_at, :updated_at)`

// scheduleRow mirrors a schedule_entries row. notes is nullable for rows
// written by other tools and reads back as an empty string.
type scheduleRow struct {
	ID           string  `db:"id"`
	SubjectID    string  `db:"subject_id"`
	InstructorID string  `db:"instructor_id"`
	RoomID       *string `db:"room_id"`
	models.TimeSlot
	models.Term
	Status    models.ScheduleStatus `db:"status"`
	Notes     sql.NullString        `db:"notes"`
	CreatedAt time.Time             `db:"created_at"`
	UpdatedAt time.Time             `db:"updated_at"`
}

func (r scheduleRow) toModel() models.ScheduleEntry {
	return models.ScheduleEntry{
		ID:           r.ID,
		SubjectID:    r.SubjectID,
		InstructorID: r.InstructorID,
		RoomID:       r.RoomID,
		TimeSlot:     r.TimeSlot,
		Term:         r.Term,
		Status:       r.Status,
		Notes:        r.Notes.String,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// storableID reports whether id can match a row; ids are UUIDs and Postgres
// rejects anything else with a syntax error instead of an empty result.
func storableID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toModels(rows []scheduleRow) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries
}

// ScheduleRepository provides persistence for schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule entries with optional filtering and pagination.
// The total is counted before LIMIT/OFFSET are applied.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, int, error) {
	base := "FROM schedule_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("instructor_id = $%d", len(args)+1))
		args = append(args, filter.InstructorID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Weekday != 0 {
		conditions = append(conditions, fmt.Sprintf("weekday = $%d", len(args)+1))
		args = append(args, int(filter.Weekday))
	}
	if filter.AcademicYear != 0 {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.AcademicPeriod != 0 {
		conditions = append(conditions, fmt.Sprintf("academic_period = $%d", len(args)+1))
		args = append(args, filter.AcademicPeriod)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy, order := sortClause(filter.SortBy, filter.SortOrder)
	page, size := filter.PageParams()
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return toModels(rows), total, nil
}

func sortClause(sortBy, sortOrder string) (string, string) {
	allowedSorts := map[string]bool{
		"created_at":    true,
		"updated_at":    true,
		"weekday":       true,
		"start_time":    true,
		"room_id":       true,
		"instructor_id": true,
		"subject_id":    true,
	}
	if !allowedSorts[sortBy] {
		return "created_at", "DESC"
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	return sortBy, order
}

// ListActive returns every ACTIVE entry matching the scan filter, ordered by weekday and start time.
func (r *ScheduleRepository) ListActive(ctx context.Context, filter models.ActiveScheduleFilter) ([]models.ScheduleEntry, error) {
	var builder strings.Builder
	builder.WriteString("SELECT " + scheduleColumns + " FROM schedule_entries WHERE status = $1")
	args := []interface{}{string(models.ScheduleStatusActive)}
	if filter.Term != nil {
		args = append(args, filter.Term.AcademicYear, filter.Term.AcademicPeriod)
		builder.WriteString(fmt.Sprintf(" AND academic_year = $%d AND academic_period = $%d", len(args)-1, len(args)))
	}
	if filter.Weekday != 0 {
		args = append(args, int(filter.Weekday))
		builder.WriteString(fmt.Sprintf(" AND weekday = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY weekday ASC, start_time ASC, id ASC")

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list active schedule entries: %w", err)
	}
	return toModels(rows), nil
}

// FindByID loads a schedule entry by id. Unknown or malformed ids return sql.ErrNoRows.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.ScheduleEntry, error) {
	if !storableID(id) {
		return nil, sql.ErrNoRows
	}
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries WHERE id = $1`
	var row scheduleRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	entry := row.toModel()
	return &entry, nil
}

// Create stores a new schedule entry, assigning id and timestamps.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	prepareInsert(entry, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertScheduleQuery, entry); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// BulkCreate inserts entries within one transaction. Either every entry is
// written or none is; the count written is returned.
func (r *ScheduleRepository) BulkCreate(ctx context.Context, entries []models.ScheduleEntry) (count int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk create schedule entries: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range entries {
		prepareInsert(&entries[i], now)
		if _, err = sqlx.NamedExecContext(ctx, tx, insertScheduleQuery, &entries[i]); err != nil {
			return 0, fmt.Errorf("bulk insert schedule entry %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk create schedule entries: %w", err)
	}
	return len(entries), nil
}

func prepareInsert(entry *models.ScheduleEntry, now time.Time) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = models.ScheduleStatusActive
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
}

// Update rewrites a schedule entry. Unknown ids return sql.ErrNoRows.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	if !storableID(entry.ID) {
		return sql.ErrNoRows
	}
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET subject_id = :subject_id, instructor_id = :instructor_id, room_id = :room_id, weekday = :weekday, start_time = :start_time, end_time = :end_time, academic_year = :academic_year, academic_period = :academic_period, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return requireAffected(res, "update schedule entry")
}

// Delete removes a schedule entry. Unknown or already deleted ids return sql.ErrNoRows.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if !storableID(id) {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return requireAffected(res, "delete schedule entry")
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

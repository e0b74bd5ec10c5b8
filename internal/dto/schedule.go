package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

// NullableString tracks whether a JSON field was present, which lets an
// explicit null be told apart from an omitted field.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	n.Value = &value
	return nil
}

// CreateScheduleRequest describes the payload for creating a schedule entry.
type CreateScheduleRequest struct {
	SubjectID      string            `json:"subject_id" validate:"required"`
	InstructorID   string            `json:"instructor_id" validate:"required"`
	RoomID         *string           `json:"room_id"`
	Weekday        models.Weekday    `json:"weekday" validate:"required,min=1,max=7"`
	StartTime      *models.ClockTime `json:"start_time" validate:"required"`
	EndTime        *models.ClockTime `json:"end_time" validate:"required"`
	AcademicYear   int               `json:"academic_year" validate:"required,min=1900,max=9999"`
	AcademicPeriod int               `json:"academic_period" validate:"required,min=1"`
	Notes          string            `json:"notes" validate:"max=2000"`
}

// ToEntry maps the request onto a new ACTIVE schedule entry. Blank rooms become unassigned.
func (r CreateScheduleRequest) ToEntry() models.ScheduleEntry {
	entry := models.ScheduleEntry{
		SubjectID:    strings.TrimSpace(r.SubjectID),
		InstructorID: strings.TrimSpace(r.InstructorID),
		TimeSlot:     models.TimeSlot{Weekday: r.Weekday},
		Term:         models.Term{AcademicYear: r.AcademicYear, AcademicPeriod: r.AcademicPeriod},
		Status:       models.ScheduleStatusActive,
		Notes:        r.Notes,
	}
	if r.StartTime != nil {
		entry.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		entry.EndTime = *r.EndTime
	}
	if r.RoomID != nil {
		if room := strings.TrimSpace(*r.RoomID); room != "" {
			entry.RoomID = &room
		}
	}
	return entry
}

// ProposedScheduleRequest is a not-yet-persisted entry checked for conflicts.
// ID lets an edit form exclude the entry being edited.
type ProposedScheduleRequest struct {
	ID string `json:"id"`
	CreateScheduleRequest
}

// ToEntry maps the proposal onto a transient entry.
func (r ProposedScheduleRequest) ToEntry() models.ScheduleEntry {
	entry := r.CreateScheduleRequest.ToEntry()
	entry.ID = r.ID
	return entry
}

// UpdateScheduleRequest carries a partial update. Omitted fields stay unchanged;
// room_id: null unassigns the room.
type UpdateScheduleRequest struct {
	SubjectID      *string           `json:"subject_id" validate:"omitempty,min=1"`
	InstructorID   *string           `json:"instructor_id" validate:"omitempty,min=1"`
	RoomID         NullableString    `json:"room_id"`
	Weekday        *models.Weekday   `json:"weekday" validate:"omitempty,min=1,max=7"`
	StartTime      *models.ClockTime `json:"start_time"`
	EndTime        *models.ClockTime `json:"end_time"`
	AcademicYear   *int              `json:"academic_year" validate:"omitempty,min=1900,max=9999"`
	AcademicPeriod *int              `json:"academic_period" validate:"omitempty,min=1"`
	Status         *string           `json:"status" validate:"omitempty,schedule_status"`
	Notes          *string           `json:"notes" validate:"omitempty,max=2000"`
}

// Empty reports whether no field was supplied.
func (r UpdateScheduleRequest) Empty() bool {
	return r.SubjectID == nil && r.InstructorID == nil && !r.RoomID.Set && r.Weekday == nil &&
		r.StartTime == nil && r.EndTime == nil && r.AcademicYear == nil && r.AcademicPeriod == nil &&
		r.Status == nil && r.Notes == nil
}

// ToPatch converts the request into a store patch.
func (r UpdateScheduleRequest) ToPatch() models.SchedulePatch {
	patch := models.SchedulePatch{
		SubjectID:      r.SubjectID,
		InstructorID:   r.InstructorID,
		RoomSet:        r.RoomID.Set,
		RoomID:         r.RoomID.Value,
		Weekday:        r.Weekday,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		AcademicYear:   r.AcademicYear,
		AcademicPeriod: r.AcademicPeriod,
		Notes:          r.Notes,
	}
	if r.Status != nil {
		status := models.ScheduleStatus(strings.ToUpper(strings.TrimSpace(*r.Status)))
		patch.Status = &status
	}
	return patch
}

// BulkCreateScheduleRequest holds multiple entries written all-or-nothing.
type BulkCreateScheduleRequest struct {
	Items []CreateScheduleRequest `json:"items" validate:"required,min=1,dive"`
}

// BulkCreateScheduleResult reports how many entries were written.
type BulkCreateScheduleResult struct {
	Created int                `json:"created"`
	Items   []ScheduleResponse `json:"items"`
}

// ScheduleResponse is the external representation of a schedule entry,
// enriched with catalog display data when available.
type ScheduleResponse struct {
	ID             string    `json:"id"`
	SubjectID      string    `json:"subject_id"`
	SubjectCode    string    `json:"subject_code,omitempty"`
	SubjectName    string    `json:"subject_name,omitempty"`
	InstructorID   string    `json:"instructor_id"`
	InstructorName string    `json:"instructor_name,omitempty"`
	RoomID         *string   `json:"room_id"`
	RoomName       string    `json:"room_name,omitempty"`
	Weekday        int       `json:"weekday"`
	WeekdayName    string    `json:"weekday_name"`
	StartTime      string    `json:"start_time"`
	EndTime        string    `json:"end_time"`
	AcademicYear   int       `json:"academic_year"`
	AcademicPeriod int       `json:"academic_period"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewScheduleResponse maps every stored field of entry. catalog may be nil.
func NewScheduleResponse(entry models.ScheduleEntry, catalog *models.CatalogIndex) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             entry.ID,
		SubjectID:      entry.SubjectID,
		InstructorID:   entry.InstructorID,
		Weekday:        int(entry.Weekday),
		WeekdayName:    entry.Weekday.String(),
		StartTime:      entry.StartTime.String(),
		EndTime:        entry.EndTime.String(),
		AcademicYear:   entry.AcademicYear,
		AcademicPeriod: entry.AcademicPeriod,
		Status:         string(entry.Status),
		Notes:          entry.Notes,
		CreatedAt:      entry.CreatedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
	if entry.HasRoom() {
		room := *entry.RoomID
		resp.RoomID = &room
	}
	if catalog == nil {
		return resp
	}
	if subject, ok := catalog.Subjects[entry.SubjectID]; ok {
		resp.SubjectCode = subject.Code
		resp.SubjectName = subject.Name
	}
	if instructor, ok := catalog.Instructors[entry.InstructorID]; ok {
		resp.InstructorName = instructor.FullName
	}
	if room, ok := catalog.Rooms[entry.Room()]; ok && entry.HasRoom() {
		resp.RoomName = room.Name
	}
	return resp
}

// NewScheduleResponses maps a slice of entries, never returning nil.
func NewScheduleResponses(entries []models.ScheduleEntry, catalog *models.CatalogIndex) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewScheduleResponse(entry, catalog))
	}
	return out
}

// ConflictResponse is the external representation of a conflict record.
type ConflictResponse struct {
	Kind          string           `json:"kind"`
	Description   string           `json:"description"`
	EntryID       string           `json:"entry_id,omitempty"`
	ConflictingID string           `json:"conflicting_id"`
	Entry         ScheduleResponse `json:"entry"`
	Conflicting   ScheduleResponse `json:"conflicting"`
}

// NewConflictResponses maps conflict records, never returning nil.
func NewConflictResponses(records []models.ConflictRecord, catalog *models.CatalogIndex) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(records))
	for _, record := range records {
		out = append(out, ConflictResponse{
			Kind:          string(record.Kind),
			Description:   record.Description,
			EntryID:       record.EntryID,
			ConflictingID: record.ConflictingID,
			Entry:         NewScheduleResponse(record.Entry, catalog),
			Conflicting:   NewScheduleResponse(record.Conflicting, catalog),
		})
	}
	return out
}

// ConflictReport wraps the conflicts found for one entry.
type ConflictReport struct {
	EntryID   string             `json:"entry_id,omitempty"`
	Count     int                `json:"count"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

package models

import (
	"fmt"
	"time"
)

// ScheduleStatus represents the lifecycle of a schedule entry. CANCELLED is terminal.
type ScheduleStatus string

const (
	ScheduleStatusActive    ScheduleStatus = "ACTIVE"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

// Valid reports whether the status is a known value.
func (s ScheduleStatus) Valid() bool {
	return s == ScheduleStatusActive || s == ScheduleStatusCancelled
}

// Term identifies the academic window a weekly schedule recurs within.
type Term struct {
	AcademicYear   int `db:"academic_year" json:"academic_year"`
	AcademicPeriod int `db:"academic_period" json:"academic_period"`
}

// IsZero reports whether neither component is set.
func (t Term) IsZero() bool {
	return t.AcademicYear == 0 && t.AcademicPeriod == 0
}

func (t Term) String() string {
	return fmt.Sprintf("%d/%d", t.AcademicYear, t.AcademicPeriod)
}

// ScheduleEntry assigns a recurring weekly slot to a subject, instructor and optional room.
type ScheduleEntry struct {
	ID           string  `db:"id" json:"id"`
	SubjectID    string  `db:"subject_id" json:"subject_id"`
	InstructorID string  `db:"instructor_id" json:"instructor_id"`
	RoomID       *string `db:"room_id" json:"room_id"`
	TimeSlot
	Term
	Status    ScheduleStatus `db:"status" json:"status"`
	Notes     string         `db:"notes" json:"notes"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the entry takes part in conflict detection and occupancy.
func (e ScheduleEntry) IsActive() bool {
	return e.Status == ScheduleStatusActive
}

// HasRoom reports whether a room is assigned.
func (e ScheduleEntry) HasRoom() bool {
	return e.RoomID != nil && *e.RoomID != ""
}

// Room returns the room id or an empty string when unassigned.
func (e ScheduleEntry) Room() string {
	if e.RoomID == nil {
		return ""
	}
	return *e.RoomID
}

// ScheduleFilter describes query params for listing schedules. Zero values are unset.
type ScheduleFilter struct {
	SubjectID      string
	InstructorID   string
	RoomID         string
	Weekday        Weekday
	AcademicYear   int
	AcademicPeriod int
	Status         ScheduleStatus
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
}

const (
	DefaultSchedulePageSize = 10
	MaxSchedulePageSize     = 100
)

// PageParams returns the effective 1-based page and page size.
func (f ScheduleFilter) PageParams() (page, size int) {
	page = f.Page
	if page < 1 {
		page = 1
	}
	size = f.PageSize
	if size <= 0 || size > MaxSchedulePageSize {
		size = DefaultSchedulePageSize
	}
	return page, size
}

// ActiveScheduleFilter narrows the active-entry scans used by conflict detection and occupancy.
type ActiveScheduleFilter struct {
	Term    *Term
	Weekday Weekday
}

// SchedulePatch carries the fields supplied to an update; nil means unchanged.
// RoomSet distinguishes an explicit null room from an omitted one.
type SchedulePatch struct {
	SubjectID      *string
	InstructorID   *string
	RoomSet        bool
	RoomID         *string
	Weekday        *Weekday
	StartTime      *ClockTime
	EndTime        *ClockTime
	AcademicYear   *int
	AcademicPeriod *int
	Status         *ScheduleStatus
	Notes          *string
}

// Apply copies the supplied fields onto entry.
func (p SchedulePatch) Apply(entry *ScheduleEntry) {
	if p.SubjectID != nil {
		entry.SubjectID = *p.SubjectID
	}
	if p.InstructorID != nil {
		entry.InstructorID = *p.InstructorID
	}
	if p.RoomSet {
		if p.RoomID == nil || *p.RoomID == "" {
			entry.RoomID = nil
		} else {
			room := *p.RoomID
			entry.RoomID = &room
		}
	}
	if p.Weekday != nil {
		entry.Weekday = *p.Weekday
	}
	if p.StartTime != nil {
		entry.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		entry.EndTime = *p.EndTime
	}
	if p.AcademicYear != nil {
		entry.AcademicYear = *p.AcademicYear
	}
	if p.AcademicPeriod != nil {
		entry.AcademicPeriod = *p.AcademicPeriod
	}
	if p.Status != nil {
		entry.Status = *p.Status
	}
	if p.Notes != nil {
		entry.Notes = *p.Notes
	}
}

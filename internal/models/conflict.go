package models

import (
	"fmt"
	"sort"
)

// ConflictKind classifies which shared resource two entries clash on.
type ConflictKind string

const (
	ConflictInstructorClash ConflictKind = "INSTRUCTOR_CLASH"
	ConflictRoomClash       ConflictKind = "ROOM_CLASH"
)

// ConflictRecord pairs two active entries whose slots overlap on a shared
// instructor or room. It is computed on demand and never stored.
type ConflictRecord struct {
	Kind          ConflictKind  `json:"kind"`
	Description   string        `json:"description"`
	EntryID       string        `json:"entry_id"`
	ConflictingID string        `json:"conflicting_id"`
	Entry         ScheduleEntry `json:"entry"`
	Conflicting   ScheduleEntry `json:"conflicting"`
}

// DetectConflicts compares target against candidates. Cancelled entries,
// entries from other terms and the target itself never match. An instructor
// clash and a room clash against the same candidate yield two records.
func DetectConflicts(target ScheduleEntry, candidates []ScheduleEntry) []ConflictRecord {
	records := make([]ConflictRecord, 0)
	if !target.IsActive() {
		return records
	}
	for _, other := range candidates {
		if target.ID != "" && other.ID == target.ID {
			continue
		}
		if !other.IsActive() || other.Term != target.Term {
			continue
		}
		if !target.TimeSlot.Overlaps(other.TimeSlot) {
			continue
		}
		if other.InstructorID == target.InstructorID {
			records = append(records, newConflictRecord(ConflictInstructorClash, target, other,
				fmt.Sprintf("instructor %s is already scheduled %s", other.InstructorID, other.TimeSlot)))
		}
		if target.HasRoom() && other.HasRoom() && *other.RoomID == *target.RoomID {
			records = append(records, newConflictRecord(ConflictRoomClash, target, other,
				fmt.Sprintf("room %s is already booked %s", *other.RoomID, other.TimeSlot)))
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Conflicting, records[j].Conflicting
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return records[i].Kind < records[j].Kind
	})
	return records
}

func newConflictRecord(kind ConflictKind, target, other ScheduleEntry, description string) ConflictRecord {
	return ConflictRecord{
		Kind:          kind,
		Description:   description,
		EntryID:       target.ID,
		ConflictingID: other.ID,
		Entry:         target,
		Conflicting:   other,
	}
}

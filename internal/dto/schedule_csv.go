package dto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

// ScheduleCSVRow is one line of the CSV import/export format.
type ScheduleCSVRow struct {
	ID             string `csv:"id"`
	SubjectID      string `csv:"subject_id"`
	InstructorID   string `csv:"instructor_id"`
	RoomID         string `csv:"room_id"`
	Weekday        string `csv:"weekday"`
	StartTime      string `csv:"start_time"`
	EndTime        string `csv:"end_time"`
	AcademicYear   string `csv:"academic_year"`
	AcademicPeriod string `csv:"academic_period"`
	Status         string `csv:"status"`
	Notes          string `csv:"notes"`
}

// NewScheduleCSVRow renders an entry for export. Weekdays are written by name.
func NewScheduleCSVRow(entry models.ScheduleEntry) ScheduleCSVRow {
	return ScheduleCSVRow{
		ID:             entry.ID,
		SubjectID:      entry.SubjectID,
		InstructorID:   entry.InstructorID,
		RoomID:         entry.Room(),
		Weekday:        entry.Weekday.String(),
		StartTime:      entry.StartTime.String(),
		EndTime:        entry.EndTime.String(),
		AcademicYear:   strconv.Itoa(entry.AcademicYear),
		AcademicPeriod: strconv.Itoa(entry.AcademicPeriod),
		Status:         string(entry.Status),
		Notes:          entry.Notes,
	}
}

// ToCreateRequest parses an imported row. The id and status columns are ignored:
// imported rows always create new ACTIVE entries.
func (r ScheduleCSVRow) ToCreateRequest() (CreateScheduleRequest, error) {
	var req CreateScheduleRequest

	weekday, err := models.ParseWeekday(r.Weekday)
	if err != nil {
		return req, err
	}
	start, err := models.ParseClockTime(r.StartTime)
	if err != nil {
		return req, err
	}
	end, err := models.ParseClockTime(r.EndTime)
	if err != nil {
		return req, err
	}
	year, err := atoiField("academic_year", r.AcademicYear)
	if err != nil {
		return req, err
	}
	period, err := atoiField("academic_period", r.AcademicPeriod)
	if err != nil {
		return req, err
	}

	req = CreateScheduleRequest{
		SubjectID:      strings.TrimSpace(r.SubjectID),
		InstructorID:   strings.TrimSpace(r.InstructorID),
		Weekday:        weekday,
		StartTime:      &start,
		EndTime:        &end,
		AcademicYear:   year,
		AcademicPeriod: period,
		Notes:          r.Notes,
	}
	if room := strings.TrimSpace(r.RoomID); room != "" {
		req.RoomID = &room
	}
	return req, nil
}

func atoiField(name, raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, raw)
	}
	return value, nil
}

// ScheduleDatasetHeaders is the column order used by tabular exports.
var ScheduleDatasetHeaders = []string{"Weekday", "Start", "End", "Subject", "Instructor", "Room", "Term", "Status"}

// ScheduleDatasetRow renders an entry as a tabular export row keyed by header.
func ScheduleDatasetRow(resp ScheduleResponse) map[string]string {
	subject := resp.SubjectID
	if resp.SubjectName != "" {
		subject = resp.SubjectName
	}
	instructor := resp.InstructorID
	if resp.InstructorName != "" {
		instructor = resp.InstructorName
	}
	room := "-"
	if resp.RoomID != nil {
		room = *resp.RoomID
		if resp.RoomName != "" {
			room = resp.RoomName
		}
	}
	return map[string]string{
		"Weekday":    resp.WeekdayName,
		"Start":      resp.StartTime,
		"End":        resp.EndTime,
		"Subject":    subject,
		"Instructor": instructor,
		"Room":       room,
		"Term":       fmt.Sprintf("%d/%d", resp.AcademicYear, resp.AcademicPeriod),
		"Status":     resp.Status,
	}
}

package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
)

func storedEntry() models.ScheduleEntry {
	room := "R1"
	created := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	return models.ScheduleEntry{
		ID:           "e1",
		SubjectID:    "math",
		InstructorID: "P1",
		RoomID:       &room,
		TimeSlot:     models.TimeSlot{Weekday: models.Tuesday, StartTime: models.MustClockTime("14:00"), EndTime: models.MustClockTime("16:00")},
		Term:         models.Term{AcademicYear: 2024, AcademicPeriod: 1},
		Status:       models.ScheduleStatusActive,
		Notes:        "lab week",
		CreatedAt:    created,
		UpdatedAt:    created.Add(time.Hour),
	}
}

func TestNewScheduleResponseCoversEveryField(t *testing.T) {
	entry := storedEntry()
	catalog := models.NewCatalogIndex()
	catalog.Subjects["math"] = models.CatalogSubject{ID: "math", Code: "MTH", Name: "Mathematics"}
	catalog.Instructors["P1"] = models.CatalogInstructor{ID: "P1", FullName: "Ada Lovelace"}
	catalog.Rooms["R1"] = models.CatalogRoom{ID: "R1", Name: "Lab 1"}

	resp := NewScheduleResponse(entry, catalog)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	expected := map[string]interface{}{
		"id":              "e1",
		"subject_id":      "math",
		"subject_code":    "MTH",
		"subject_name":    "Mathematics",
		"instructor_id":   "P1",
		"instructor_name": "Ada Lovelace",
		"room_id":         "R1",
		"room_name":       "Lab 1",
		"weekday":         float64(2),
		"weekday_name":    "Tuesday",
		"start_time":      "14:00",
		"end_time":        "16:00",
		"academic_year":   float64(2024),
		"academic_period": float64(1),
		"status":          "ACTIVE",
		"notes":           "lab week",
		"created_at":      "2024-02-01T08:00:00Z",
		"updated_at":      "2024-02-01T09:00:00Z",
	}
	assert.Equal(t, expected, fields)
}

func TestNewScheduleResponseKeepsNullRoom(t *testing.T) {
	entry := storedEntry()
	entry.RoomID = nil

	raw, err := json.Marshal(NewScheduleResponse(entry, nil))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	value, present := fields["room_id"]
	assert.True(t, present)
	assert.Nil(t, value)
	assert.NotContains(t, fields, "room_name")
}

func TestNewScheduleResponsesNeverNil(t *testing.T) {
	out := NewScheduleResponses(nil, nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
	assert.NotNil(t, NewConflictResponses(nil, nil))
}

func TestUpdateScheduleRequestRoomTriState(t *testing.T) {
	var omitted UpdateScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"notes":"x"}`), &omitted))
	assert.False(t, omitted.ToPatch().RoomSet)

	var cleared UpdateScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":null}`), &cleared))
	patch := cleared.ToPatch()
	assert.True(t, patch.RoomSet)
	assert.Nil(t, patch.RoomID)

	var moved UpdateScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":"R2","status":"CANCELLED"}`), &moved))
	patch = moved.ToPatch()
	require.NotNil(t, patch.RoomID)
	assert.Equal(t, "R2", *patch.RoomID)
	require.NotNil(t, patch.Status)
	assert.Equal(t, models.ScheduleStatusCancelled, *patch.Status)

	entry := storedEntry()
	cleared.ToPatch().Apply(&entry)
	assert.Nil(t, entry.RoomID)
}

func TestUpdateScheduleRequestEmpty(t *testing.T) {
	var req UpdateScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.True(t, req.Empty())
	require.NoError(t, json.Unmarshal([]byte(`{"room_id":null}`), &req))
	assert.False(t, req.Empty())
}

func TestCreateScheduleRequestValidation(t *testing.T) {
	v := validator.New()

	var req CreateScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subject_id":"math","instructor_id":"P1","weekday":2,"start_time":"14:00","end_time":"16:00","academic_year":2024,"academic_period":1}`), &req))
	assert.NoError(t, v.Struct(req))

	entry := req.ToEntry()
	assert.Nil(t, entry.RoomID)
	assert.Equal(t, models.ScheduleStatusActive, entry.Status)
	assert.Equal(t, models.MustClockTime("16:00"), entry.EndTime)

	missing := CreateScheduleRequest{SubjectID: "math", Weekday: models.Monday}
	assert.Error(t, v.Struct(missing))

	badDay := req
	badDay.Weekday = 8
	assert.Error(t, v.Struct(badDay))
}

func TestCreateScheduleRequestBlankRoomIsUnassigned(t *testing.T) {
	blank := "  "
	req := CreateScheduleRequest{SubjectID: "math", InstructorID: "P1", RoomID: &blank}
	assert.Nil(t, req.ToEntry().RoomID)
}

func TestScheduleCSVRowRoundTrip(t *testing.T) {
	row := NewScheduleCSVRow(storedEntry())
	assert.Equal(t, "Tuesday", row.Weekday)
	assert.Equal(t, "R1", row.RoomID)

	req, err := row.ToCreateRequest()
	require.NoError(t, err)
	entry := req.ToEntry()
	original := storedEntry()
	assert.Equal(t, original.TimeSlot, entry.TimeSlot)
	assert.Equal(t, original.Term, entry.Term)
	assert.Equal(t, original.Room(), entry.Room())
	assert.Equal(t, original.Notes, entry.Notes)
}

func TestScheduleCSVRowRejectsBadValues(t *testing.T) {
	row := NewScheduleCSVRow(storedEntry())
	row.Weekday = "Funday"
	_, err := row.ToCreateRequest()
	assert.Error(t, err)

	row = NewScheduleCSVRow(storedEntry())
	row.AcademicYear = "twenty"
	_, err = row.ToCreateRequest()
	assert.ErrorContains(t, err, "academic_year")
}

func TestScheduleDatasetRowPrefersCatalogNames(t *testing.T) {
	resp := NewScheduleResponse(storedEntry(), nil)
	row := ScheduleDatasetRow(resp)
	assert.Equal(t, "math", row["Subject"])
	assert.Equal(t, "R1", row["Room"])
	assert.Equal(t, "2024/1", row["Term"])

	resp.RoomID = nil
	assert.Equal(t, "-", ScheduleDatasetRow(resp)["Room"])
	assert.Len(t, ScheduleDatasetHeaders, len(row))
}

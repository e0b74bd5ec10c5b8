package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

func slot(day Weekday, start, end string) TimeSlot {
	return TimeSlot{Weekday: day, StartTime: MustClockTime(start), EndTime: MustClockTime(end)}
}

func TestNewTimeSlotRejectsInvalidRanges(t *testing.T) {
	cases := []struct {
		name  string
		day   Weekday
		start string
		end   string
	}{
		{"start equals end", Monday, "10:00", "10:00"},
		{"start after end", Monday, "11:00", "10:00"},
		{"weekday zero", 0, "10:00", "11:00"},
		{"weekday eight", 8, "10:00", "11:00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTimeSlot(tc.day, MustClockTime(tc.start), MustClockTime(tc.end))
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidTimeSlot.Code, appErrors.FromError(err).Code)
		})
	}

	got, err := NewTimeSlot(Sunday, MustClockTime("08:00"), MustClockTime("09:30"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, got.Duration())
}

func TestOverlapsSymmetricAndWeekdayBound(t *testing.T) {
	slots := []TimeSlot{
		slot(Monday, "10:00", "11:00"),
		slot(Monday, "10:30", "11:30"),
		slot(Monday, "11:00", "12:00"),
		slot(Monday, "09:00", "13:00"),
		slot(Tuesday, "10:00", "11:00"),
		slot(Sunday, "00:00", "23:59"),
	}
	for _, a := range slots {
		for _, b := range slots {
			assert.Equal(t, Overlaps(a, b), Overlaps(b, a), "%s vs %s", a, b)
			if a.Weekday != b.Weekday {
				assert.False(t, Overlaps(a, b), "%s vs %s", a, b)
			}
		}
		assert.True(t, a.Overlaps(a), "slot must overlap itself: %s", a)
	}
}

func TestOverlapsBoundaryExclusive(t *testing.T) {
	assert.False(t, Overlaps(slot(Monday, "10:00", "11:00"), slot(Monday, "11:00", "12:00")))
	assert.True(t, Overlaps(slot(Monday, "10:00", "11:00"), slot(Monday, "10:59", "12:00")))
	assert.True(t, Overlaps(slot(Monday, "09:00", "13:00"), slot(Monday, "10:00", "11:00")))
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("1")
	require.NoError(t, err)
	assert.Equal(t, Monday, day)

	day, err = ParseWeekday("tuesday")
	require.NoError(t, err)
	assert.Equal(t, Tuesday, day)

	day, err = ParseWeekday("SUN")
	require.NoError(t, err)
	assert.Equal(t, Sunday, day)
	assert.Equal(t, "Sunday", day.String())

	_, err = ParseWeekday("0")
	assert.Error(t, err)
	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestClockTimeParsingAndEncoding(t *testing.T) {
	ct, err := ParseClockTime("14:05:59")
	require.NoError(t, err)
	assert.Equal(t, "14:05", ct.String())
	assert.Equal(t, 14, ct.Hour())
	assert.Equal(t, 5, ct.Minute())

	_, err = ParseClockTime("24:00")
	assert.Error(t, err)
	_, err = ParseClockTime("noon")
	assert.Error(t, err)

	raw, err := json.Marshal(slot(Wednesday, "08:00", "09:15"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"weekday":3,"start_time":"08:00","end_time":"09:15"}`, string(raw))

	var decoded TimeSlot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, slot(Wednesday, "08:00", "09:15"), decoded)
}

func TestClockTimeScan(t *testing.T) {
	var ct ClockTime
	require.NoError(t, ct.Scan([]byte("09:30:00")))
	assert.Equal(t, MustClockTime("09:30"), ct)

	require.NoError(t, ct.Scan(time.Date(0, 1, 1, 16, 45, 0, 0, time.UTC)))
	assert.Equal(t, MustClockTime("16:45"), ct)

	assert.Error(t, ct.Scan(42))

	value, err := MustClockTime("07:05").Value()
	require.NoError(t, err)
	assert.Equal(t, "07:05", value)
}

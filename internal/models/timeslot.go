package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

// Weekday is an ISO 8601 day number: Monday=1 through Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weekdays lists every valid weekday in calendar order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// Valid reports whether the weekday is within 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the English day name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// ParseWeekday accepts an ISO day number or an English day name (full or three letters).
func ParseWeekday(raw string) (Weekday, error) {
	value := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(value); err == nil {
		day := Weekday(n)
		if !day.Valid() {
			return 0, appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("weekday %d out of range 1-7", n))
		}
		return day, nil
	}
	for _, day := range Weekdays() {
		name := weekdayNames[day]
		if strings.EqualFold(value, name) || strings.EqualFold(value, name[:3]) {
			return day, nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("unknown weekday %q", raw))
}

const minutesPerDay = 24 * 60

// ClockTime is a time of day with minute resolution, stored as minutes after midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute components.
func NewClockTime(hour, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("invalid clock time %02d:%02d", hour, minute))
	}
	return ClockTime(hour*60 + minute), nil
}

// MustClockTime parses an "HH:MM" literal and panics on failure.
func MustClockTime(raw string) ClockTime {
	t, err := ParseClockTime(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS"; seconds are discarded.
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("invalid clock time %q, expected HH:MM", raw))
	}
	hour, errH := strconv.Atoi(parts[0])
	minute, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0, appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("invalid clock time %q, expected HH:MM", raw))
	}
	return NewClockTime(hour, minute)
}

// Valid reports whether the value lies within a single day.
func (t ClockTime) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// Hour returns the hour component.
func (t ClockTime) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t ClockTime) Minute() int {
	return int(t) % 60
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON renders the time as "HH:MM".
func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses an "HH:MM" string.
func (t *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer for TIME columns.
func (t ClockTime) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner for TIME and text columns.
func (t *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = 0
		return nil
	case time.Time:
		*t = ClockTime(v.Hour()*60 + v.Minute())
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

func (t *ClockTime) scanString(raw string) error {
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeSlot is a recurring weekly interval [StartTime, EndTime) on a weekday.
type TimeSlot struct {
	Weekday   Weekday   `db:"weekday" json:"weekday"`
	StartTime ClockTime `db:"start_time" json:"start_time"`
	EndTime   ClockTime `db:"end_time" json:"end_time"`
}

// NewTimeSlot builds a validated slot.
func NewTimeSlot(weekday Weekday, start, end ClockTime) (TimeSlot, error) {
	slot := TimeSlot{Weekday: weekday, StartTime: start, EndTime: end}
	if err := slot.Validate(); err != nil {
		return TimeSlot{}, err
	}
	return slot, nil
}

// Validate checks the weekday range and that the slot starts before it ends.
func (s TimeSlot) Validate() error {
	if !s.Weekday.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("weekday %d out of range 1-7", int(s.Weekday)))
	}
	if !s.StartTime.Valid() || !s.EndTime.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidTimeSlot, "clock time out of range")
	}
	if s.StartTime >= s.EndTime {
		return appErrors.Clone(appErrors.ErrInvalidTimeSlot, fmt.Sprintf("start time %s must be before end time %s", s.StartTime, s.EndTime))
	}
	return nil
}

// Overlaps reports whether both slots fall on the same weekday and their
// half-open ranges intersect. Touching slots do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Weekday != other.Weekday {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// Overlaps is the free-function form of TimeSlot.Overlaps.
func Overlaps(a, b TimeSlot) bool {
	return a.Overlaps(b)
}

// Duration returns the length of the slot.
func (s TimeSlot) Duration() time.Duration {
	return time.Duration(s.EndTime-s.StartTime) * time.Minute
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Weekday, s.StartTime, s.EndTime)
}

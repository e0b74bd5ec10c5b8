package models

import "time"

// Hour range pre-seeded in the by-hour distribution: buckets 08 through 21,
// each covering [h:00, h+1:00), together spanning 08:00-22:00.
const (
	OccupancyFirstHour = 8
	OccupancyLastHour  = 21
)

// OccupancyFilter optionally scopes statistics to a single term.
type OccupancyFilter struct {
	Term *Term
}

// WeekdayCount is a per-day tally.
type WeekdayCount struct {
	Weekday Weekday `json:"weekday"`
	Name    string  `json:"name"`
	Count   int     `json:"count"`
}

// HourCount tallies entries by the hour containing their start time.
type HourCount struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RoomUsage reports how many weekly bookings a room carries.
type RoomUsage struct {
	RoomID      string  `json:"room_id"`
	Count       int     `json:"count"`
	Utilization float64 `json:"utilization"`
}

// OccupancyStats aggregates active schedule entries.
type OccupancyStats struct {
	Term                *Term          `json:"term,omitempty"`
	TotalEntries        int            `json:"total_entries"`
	UnassignedRoomCount int            `json:"unassigned_room_count"`
	ByWeekday           []WeekdayCount `json:"by_weekday"`
	ByHour              []HourCount    `json:"by_hour"`
	TopRooms            []RoomUsage    `json:"top_rooms"`
	RoomsInUse          int            `json:"rooms_in_use"`
	SlotCapacity        int            `json:"slot_capacity"`
	Utilization         float64        `json:"utilization"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

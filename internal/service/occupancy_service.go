package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
)

type activeScheduleLister interface {
	ListActive(ctx context.Context, filter models.ActiveScheduleFilter) ([]models.ScheduleEntry, error)
}

// OccupancyConfig tunes the aggregator.
type OccupancyConfig struct {
	// SlotCapacity is the number of bookable slots per room per week.
	SlotCapacity int
	TopRooms     int
	CacheTTL     time.Duration
}

// OccupancyService aggregates weekday, hour and room usage over ACTIVE entries.
type OccupancyService struct {
	repo    activeScheduleLister
	cache   *CacheService
	metrics *MetricsService
	cfg     OccupancyConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewOccupancyService constructs an occupancy service. cache and metrics may be nil.
func NewOccupancyService(repo activeScheduleLister, cache *CacheService, metrics *MetricsService, cfg OccupancyConfig, logger *zap.Logger) *OccupancyService {
	if cfg.SlotCapacity <= 0 {
		cfg.SlotCapacity = 40
	}
	if cfg.TopRooms <= 0 {
		cfg.TopRooms = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyService{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger, now: time.Now}
}

// ComputeStats returns occupancy statistics, optionally scoped to one term.
// The boolean reports whether the result came from cache.
func (s *OccupancyService) ComputeStats(ctx context.Context, filter models.OccupancyFilter) (*models.OccupancyStats, bool, error) {
	key := occupancyCacheKey(filter)
	var cached models.OccupancyStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	start := time.Now()
	entries, err := s.repo.ListActive(ctx, models.ActiveScheduleFilter{Term: filter.Term})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules for statistics")
	}

	stats := aggregateOccupancy(entries, s.cfg.SlotCapacity, s.cfg.TopRooms)
	stats.Term = filter.Term
	stats.GeneratedAt = s.now().UTC()
	s.metrics.ObserveStatsComputation(time.Since(start))

	s.cache.Set(ctx, key, stats, s.cfg.CacheTTL)
	return &stats, false, nil
}

func occupancyCacheKey(filter models.OccupancyFilter) string {
	if filter.Term == nil {
		return "occupancy:all"
	}
	return fmt.Sprintf("occupancy:%d:%d", filter.Term.AcademicYear, filter.Term.AcademicPeriod)
}

// aggregateOccupancy tallies entries. Hours 08-21 are always present in
// ByHour; an entry starting outside that range gets its own bucket, kept in
// hour order, so every entry is counted exactly once.
func aggregateOccupancy(entries []models.ScheduleEntry, slotCapacity, topN int) models.OccupancyStats {
	byWeekday := make([]models.WeekdayCount, 0, 7)
	for _, day := range models.Weekdays() {
		byWeekday = append(byWeekday, models.WeekdayCount{Weekday: day, Name: day.String()})
	}

	hourCounts := make(map[int]int)
	for hour := models.OccupancyFirstHour; hour <= models.OccupancyLastHour; hour++ {
		hourCounts[hour] = 0
	}

	roomCounts := make(map[string]int)
	stats := models.OccupancyStats{SlotCapacity: slotCapacity}

	for _, entry := range entries {
		if !entry.IsActive() || !entry.Weekday.Valid() {
			continue
		}
		stats.TotalEntries++
		byWeekday[entry.Weekday-1].Count++
		hourCounts[entry.StartTime.Hour()]++
		if entry.HasRoom() {
			roomCounts[*entry.RoomID]++
		} else {
			stats.UnassignedRoomCount++
		}
	}

	hours := make([]int, 0, len(hourCounts))
	for hour := range hourCounts {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	stats.ByHour = make([]models.HourCount, 0, len(hours))
	for _, hour := range hours {
		stats.ByHour = append(stats.ByHour, models.HourCount{Hour: hour, Label: fmt.Sprintf("%02d:00", hour), Count: hourCounts[hour]})
	}
	stats.ByWeekday = byWeekday

	rooms := make([]models.RoomUsage, 0, len(roomCounts))
	booked := 0
	for roomID, count := range roomCounts {
		booked += count
		rooms = append(rooms, models.RoomUsage{RoomID: roomID, Count: count, Utilization: ratio(count, slotCapacity)})
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Count != rooms[j].Count {
			return rooms[i].Count > rooms[j].Count
		}
		return rooms[i].RoomID < rooms[j].RoomID
	})
	if len(rooms) > topN {
		rooms = rooms[:topN]
	}
	stats.TopRooms = rooms
	stats.RoomsInUse = len(roomCounts)
	stats.Utilization = ratio(booked, stats.RoomsInUse*slotCapacity)

	return stats
}

func ratio(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-engine/internal/dto"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	"github.com/noah-isme/sma-schedule-engine/pkg/jobs"
)

type recordingStats struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingStats) ComputeStats(_ context.Context, filter models.OccupancyFilter) (*models.OccupancyStats, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, occupancyCacheKey(filter))
	return &models.OccupancyStats{}, false, nil
}

func (r *recordingStats) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.keys...)
	sort.Strings(out)
	return out
}

type recordingRefresher struct {
	calls [][]models.Term
}

func (r *recordingRefresher) Refresh(terms ...models.Term) {
	r.calls = append(r.calls, terms)
}

func TestStatsWarmerRecomputesDistinctTerms(t *testing.T) {
	stats := &recordingStats{}
	warmer := NewStatsWarmer(stats, jobs.QueueConfig{Workers: 2, BufferSize: 8})
	warmer.Start(context.Background())
	defer warmer.Stop()

	term := models.Term{AcademicYear: 2024, AcademicPeriod: 1}
	warmer.Refresh(term, term, models.Term{})

	require.Eventually(t, func() bool { return len(stats.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"occupancy:2024:1", "occupancy:all"}, stats.snapshot())
}

func TestStatsWarmerEvery(t *testing.T) {
	stats := &recordingStats{}
	warmer := NewStatsWarmer(stats, jobs.QueueConfig{})
	warmer.Start(context.Background())
	defer warmer.Stop()

	assert.Error(t, warmer.Every("not a schedule"))
	require.NoError(t, warmer.Every("@every 1s"))
	require.Eventually(t, func() bool { return len(stats.snapshot()) >= 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "occupancy:all", stats.snapshot()[0])
}

func TestStatsWarmerNilIsNoop(t *testing.T) {
	var warmer *StatsWarmer
	assert.NotPanics(t, func() { warmer.Refresh(models.Term{AcademicYear: 2024, AcademicPeriod: 1}) })
}

func TestScheduleServiceRefreshesStatsAfterMutation(t *testing.T) {
	repo := newFakeScheduleRepo()
	refresher := &recordingRefresher{}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewScheduleService(repo, cache, nil, nil, WithStatsRefresher(refresher))

	entry, err := svc.Create(context.Background(), createRequest("P1", "R1", models.Monday, "10:00", "11:00"))
	require.NoError(t, err)

	year := 2025
	_, err = svc.Update(context.Background(), entry.ID, dto.UpdateScheduleRequest{AcademicYear: &year})
	require.NoError(t, err)

	require.Len(t, refresher.calls, 2)
	assert.Equal(t, []models.Term{{AcademicYear: 2024, AcademicPeriod: 1}}, refresher.calls[0])
	assert.Equal(t, []models.Term{{AcademicYear: 2024, AcademicPeriod: 1}, {AcademicYear: 2025, AcademicPeriod: 1}}, refresher.calls[1])
}

func TestScheduleServiceSkipsRefreshWithoutCache(t *testing.T) {
	refresher := &recordingRefresher{}
	svc := NewScheduleService(newFakeScheduleRepo(), nil, nil, nil, WithStatsRefresher(refresher))

	_, err := svc.Create(context.Background(), createRequest("P1", "R1", models.Monday, "10:00", "11:00"))
	require.NoError(t, err)
	assert.Empty(t, refresher.calls)
}

package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/models"
	"github.com/noah-isme/sma-schedule-engine/pkg/jobs"
)

type statsComputer interface {
	ComputeStats(ctx context.Context, filter models.OccupancyFilter) (*models.OccupancyStats, bool, error)
}

// StatsWarmer recomputes occupancy reports in the background after the
// cache is invalidated, so the next stats request is served from cache.
type StatsWarmer struct {
	queue  *jobs.Queue[*models.Term]
	cron   *cron.Cron
	logger *zap.Logger
}

// NewStatsWarmer builds a warmer backed by a small worker pool.
func NewStatsWarmer(stats statsComputer, cfg jobs.QueueConfig) *StatsWarmer {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job[*models.Term]) error {
		_, _, err := stats.ComputeStats(ctx, models.OccupancyFilter{Term: job.Payload})
		return err
	}
	return &StatsWarmer{
		queue:  jobs.NewQueue[*models.Term]("occupancy-warmup", handler, cfg),
		logger: cfg.Logger,
	}
}

// Start launches the workers.
func (w *StatsWarmer) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Every also refreshes the all-terms report on a cron schedule such as
// "@every 15m". Call it after Start.
func (w *StatsWarmer) Every(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { w.Refresh() }); err != nil {
		return fmt.Errorf("parse warmup schedule %q: %w", spec, err)
	}
	c.Start()
	w.cron = c
	w.logger.Info("stats warmup scheduled", zap.String("schedule", spec))
	return nil
}

// Stop halts the schedule and waits for in-flight recomputations to finish.
func (w *StatsWarmer) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	w.queue.Stop()
}

// Refresh schedules the all-terms report plus one report per distinct term.
func (w *StatsWarmer) Refresh(terms ...models.Term) {
	if w == nil {
		return
	}
	w.enqueue(models.OccupancyFilter{})
	seen := make(map[models.Term]struct{}, len(terms))
	for _, term := range terms {
		if term.IsZero() {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		t := term
		w.enqueue(models.OccupancyFilter{Term: &t})
	}
}

func (w *StatsWarmer) enqueue(filter models.OccupancyFilter) {
	if _, err := w.queue.Enqueue(occupancyCacheKey(filter), filter.Term); err != nil {
		w.logger.Debug("stats warmup skipped", zap.String("key", occupancyCacheKey(filter)), zap.Error(err))
	}
}

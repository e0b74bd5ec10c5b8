package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/handler"
	"github.com/noah-isme/sma-schedule-engine/internal/repository"
	"github.com/noah-isme/sma-schedule-engine/internal/service"
	"github.com/noah-isme/sma-schedule-engine/pkg/cache"
	"github.com/noah-isme/sma-schedule-engine/pkg/config"
	"github.com/noah-isme/sma-schedule-engine/pkg/database"
	"github.com/noah-isme/sma-schedule-engine/pkg/jobs"
	"github.com/noah-isme/sma-schedule-engine/pkg/logger"
)

// @title Class Schedule Engine API
// @version 1.0.0
// @description Weekly class scheduling with instructor and room conflict detection.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()

	scheduleRepo := repository.NewScheduleRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)
	occupancySvc := service.NewOccupancyService(scheduleRepo, cacheSvc, metrics, service.OccupancyConfig{
		SlotCapacity: cfg.Schedule.SlotCapacity,
		TopRooms:     cfg.Schedule.TopRooms,
		CacheTTL:     cfg.Stats.CacheTTL,
	}, logr)

	var scheduleOpts []service.ScheduleServiceOption
	if cacheSvc.Enabled() {
		warmer := service.NewStatsWarmer(occupancySvc, jobs.QueueConfig{Workers: 2, MaxRetries: 2, Logger: logr})
		warmer.Start(ctx)
		defer warmer.Stop()
		if spec := cfg.Stats.WarmupSchedule; spec != "" {
			if err := warmer.Every(spec); err != nil {
				logr.Warn("periodic stats warmup disabled", zap.Error(err))
			}
		}
		scheduleOpts = append(scheduleOpts, service.WithStatsRefresher(warmer))
	}
	scheduleSvc := service.NewScheduleService(scheduleRepo, cacheSvc, validate, logr, scheduleOpts...)
	conflictSvc := service.NewConflictService(scheduleRepo, metrics, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, logr)
	exportSvc := service.NewExportService(scheduleSvc, scheduleSvc, catalogSvc, logr, nil, nil)

	dependencies := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		dependencies["redis"] = handler.PingerFunc(cacheRepo.Ping)
	}

	router := newRouter(cfg, logr, metrics, handlers{
		schedules: handler.NewScheduleHandler(scheduleSvc, conflictSvc, catalogSvc),
		transfer:  handler.NewScheduleTransferHandler(exportSvc, catalogSvc),
		occupancy: handler.NewOccupancyHandler(occupancySvc),
		metrics:   handler.NewMetricsHandler(metrics, dependencies),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

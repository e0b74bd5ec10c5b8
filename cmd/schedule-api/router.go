package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-schedule-engine/api/swagger"
	"github.com/noah-isme/sma-schedule-engine/internal/handler"
	"github.com/noah-isme/sma-schedule-engine/internal/middleware"
	"github.com/noah-isme/sma-schedule-engine/internal/service"
	"github.com/noah-isme/sma-schedule-engine/pkg/config"
	"github.com/noah-isme/sma-schedule-engine/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-schedule-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-schedule-engine/pkg/middleware/requestid"
)

type handlers struct {
	schedules *handler.ScheduleHandler
	transfer  *handler.ScheduleTransferHandler
	occupancy *handler.OccupancyHandler
	metrics   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	schedules := api.Group("/schedules")
	schedules.GET("", h.schedules.List)
	schedules.POST("", h.schedules.Create)
	schedules.POST("/bulk", h.schedules.BulkCreate)
	schedules.POST("/conflicts/check", h.schedules.CheckProposed)
	schedules.GET("/stats", h.occupancy.Stats)
	schedules.GET("/export", h.transfer.Export)
	schedules.POST("/import", h.transfer.Import)
	schedules.GET("/:id", h.schedules.Get)
	schedules.PATCH("/:id", h.schedules.Update)
	schedules.DELETE("/:id", h.schedules.Delete)
	schedules.GET("/:id/conflicts", h.schedules.Conflicts)

	return r
}

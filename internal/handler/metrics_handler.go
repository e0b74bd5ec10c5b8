package handler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-engine/internal/service"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
	"github.com/noah-isme/sma-schedule-engine/pkg/response"
)

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics      *service.MetricsService
	dependencies map[string]Pinger
}

// NewMetricsHandler constructs a metrics handler. dependencies are checked by Ready.
func NewMetricsHandler(metrics *service.MetricsService, dependencies map[string]Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, dependencies: dependencies}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency and reports 503 when any is unreachable.
func (h *MetricsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.dependencies))
	for name, dep := range h.dependencies {
		if dep != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	var failures []string
	var firstErr error
	for _, name := range names {
		if err := h.dependencies[name].PingContext(ctx); err != nil {
			checks[name] = err.Error()
			failures = append(failures, fmt.Sprintf("%s: %s", name, err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		checks[name] = "ok"
	}

	if len(failures) > 0 {
		response.Error(c, appErrors.Wrap(firstErr, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status,
			"dependencies unavailable: "+strings.Join(failures, "; ")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

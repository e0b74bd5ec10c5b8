package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-engine/internal/middleware"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	"github.com/noah-isme/sma-schedule-engine/pkg/response"
)

type occupancyService interface {
	ComputeStats(ctx context.Context, filter models.OccupancyFilter) (*models.OccupancyStats, bool, error)
}

// OccupancyHandler serves aggregate schedule statistics.
type OccupancyHandler struct {
	service occupancyService
}

// NewOccupancyHandler constructs handler.
func NewOccupancyHandler(svc occupancyService) *OccupancyHandler {
	return &OccupancyHandler{service: svc}
}

// Stats godoc
// @Summary Occupancy statistics
// @Description Counts ACTIVE entries by weekday, start hour and room. Supply both term params or neither.
// @Tags Schedules
// @Produce json
// @Param academic_year query int false "Academic year"
// @Param academic_period query int false "Academic period"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/stats [get]
func (h *OccupancyHandler) Stats(c *gin.Context) {
	term, err := parseTermQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, hit, err := h.service.ComputeStats(c.Request.Context(), models.OccupancyFilter{Term: term})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mindsetu-api/internal/middleware"
	"github.com/noah-isme/mindsetu-api/internal/models"
	"github.com/noah-isme/mindsetu-api/internal/service"
	appErrors "github.com/noah-isme/mindsetu-api/pkg/errors"
	"github.com/noah-isme/mindsetu-api/pkg/response"
)

// DashboardHandler wires HTTP endpoints to dashboard and statistics services.
type DashboardHandler struct {
	dashboard *service.DashboardService
	stats     *service.StatsService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(dashboard *service.DashboardService, stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, stats: stats}
}

// Overview godoc
// @Summary Institute dashboard
// @Description Assignment and attitude statistics for the actor's institute
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	overview, cached, err := h.dashboard.InstituteOverview(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, overview, "", middleware.ExtractMeta(c))
}

// Stats godoc
// @Summary Institute assignment statistics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.stats.ComputeInstituteStats(c.Request.Context(), actor.InstituteName)
	if err != nil {
		response.ErrorWithData(c, err, stats)
		return
	}
	response.OK(c, stats, "")
}

// SystemStatus godoc
// @Summary Runtime metrics snapshot
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/system [get]
func (h *DashboardHandler) SystemStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if actor.UserType != models.UserTypeSuperAdmin {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	status, err := h.dashboard.SystemStatus(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status, "")
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	apperrors "github.com/ikkim/eduverify-backend/internal/errors"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns KPIs for the caller's scope
// GET /api/v1/dashboard
func (ctrl *DashboardController) GetDashboard(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		return
	}

	filter, err := parseRequestFilter(c)
	if err != nil {
		apperrors.ParseAndRespond(c, err, "dashboard")
		return
	}

	stats, err := ctrl.dashboardService.Stats(c.Request.Context(), service.ScopeFilter(session, filter))
	if err != nil {
		apperrors.ParseAndRespond(c, err, "dashboard")
		return
	}

	c.JSON(http.StatusOK, stats)
}

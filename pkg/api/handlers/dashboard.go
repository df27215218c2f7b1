package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/outreach/pkg/api/errors"
	"github.com/jordanlanch/outreach/pkg/crm"
)

// DashboardHandler exposes CRM stats and the recent-activity feed
type DashboardHandler struct {
	crm      crm.Client
	activity *crm.ActivityLog
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(crmClient crm.Client, activity *crm.ActivityLog) *DashboardHandler {
	return &DashboardHandler{crm: crmClient, activity: activity}
}

// Stats godoc
// @Summary Get today's call and appointment counts
// @Router /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.crm.Stats(c.Request().Context())
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Activity godoc
// @Summary Get the recent activity feed, newest first
// @Router /api/dashboard/activity [get]
func (h *DashboardHandler) Activity(c echo.Context) error {
	limit := crm.ActivityCapacity
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apierrors.ValidationError(c, err)
		}
		limit = n
	}
	return c.JSON(http.StatusOK, h.activity.Recent(limit))
}

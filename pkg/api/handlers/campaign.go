package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/outreach/pkg/api/errors"
	"github.com/jordanlanch/outreach/pkg/campaign"
	"github.com/jordanlanch/outreach/pkg/models"
)

// CampaignHandler exposes campaign load and dialer control endpoints
type CampaignHandler struct {
	svc      *campaign.Service
	validate *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(svc *campaign.Service) *CampaignHandler {
	return &CampaignHandler{svc: svc, validate: validator.New()}
}

// LoadCSV godoc
// @Summary Load a campaign from an uploaded CSV
// @Router /api/campaign/load [post]
func (h *CampaignHandler) LoadCSV(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	src, err := file.Open()
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	defer src.Close()

	count, err := h.svc.LoadFromCSV(src)
	if err != nil {
		return h.loadError(c, err)
	}

	return c.JSON(http.StatusOK, models.CampaignLoadResponse{Success: true, Count: count})
}

// LoadFromCRM godoc
// @Summary Load a campaign's members from the CRM
// @Router /api/campaign/load-crm [post]
func (h *CampaignHandler) LoadFromCRM(c echo.Context) error {
	var req models.CampaignLoadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	count, err := h.svc.LoadFromCRM(c.Request().Context(), req.CampaignID)
	if err != nil {
		return h.loadError(c, err)
	}

	return c.JSON(http.StatusOK, models.CampaignLoadResponse{Success: true, Count: count})
}

// Start godoc
// @Summary Start the campaign dialer
// @Router /api/campaign/start [post]
func (h *CampaignHandler) Start(c echo.Context) error {
	h.svc.Start()
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Campaign started"})
}

// Stop godoc
// @Summary Request a cooperative dialer stop
// @Router /api/campaign/stop [post]
func (h *CampaignHandler) Stop(c echo.Context) error {
	h.svc.Stop()
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "Campaign stopping"})
}

// Status godoc
// @Summary Get live campaign state and counters
// @Router /api/campaign/status [get]
func (h *CampaignHandler) Status(c echo.Context) error {
	status := h.svc.Status()
	return c.JSON(http.StatusOK, models.CampaignStatusResponse{
		IsRunning: status.IsRunning,
		Stats: models.CampaignStatsResponse{
			Total:        status.Stats.Total,
			Dialed:       status.Stats.Dialed,
			Connected:    status.Stats.Connected,
			Appointments: status.Stats.Appointments,
		},
		Progress: status.Progress,
	})
}

func (h *CampaignHandler) loadError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, campaign.ErrCampaignBusy):
		return apierrors.ConflictError(c, "Campaign is running. Stop it before loading new leads.")
	case errors.Is(err, campaign.ErrFormat):
		return apierrors.ValidationError(c, err)
	default:
		return apierrors.InternalError(c, err)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/outreach/pkg/api/errors"
	"github.com/jordanlanch/outreach/pkg/export"
	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/models"
	"github.com/jordanlanch/outreach/pkg/phone"
)

// LeadHandler exposes lead CRUD, scoring, import and export endpoints
type LeadHandler struct {
	store    *leads.Store
	exporter *export.Service
	region   string
	validate *validator.Validate
}

// NewLeadHandler creates a new lead handler. Region is the default
// country for phone number parsing.
func NewLeadHandler(store *leads.Store, exporter *export.Service, region string) *LeadHandler {
	if region == "" {
		region = "US"
	}
	return &LeadHandler{store: store, exporter: exporter, region: region, validate: validator.New()}
}

// List godoc
// @Summary List all leads
// @Router /api/leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	all := h.store.All()
	data := make([]models.LeadResponse, 0, len(all))
	for _, lead := range all {
		data = append(data, toLeadResponse(lead))
	}
	return c.JSON(http.StatusOK, models.LeadListResponse{Data: data, Total: len(data)})
}

// Save godoc
// @Summary Create or update a lead
// @Router /api/leads [post]
func (h *LeadHandler) Save(c echo.Context) error {
	var req models.LeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	// store numbers in E.164 so the dialer gets consistent input
	if req.Phone != "" {
		if normalized, err := phone.NormalizePhone(req.Phone, h.region); err == nil {
			req.Phone = normalized
		}
	}

	lead := leads.Lead{
		ID:        req.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
		Status:    req.Status,
		DoNotCall: req.DoNotCall,
		Source:    "api",
	}
	lead.Score = leads.Score(lead)

	id, err := h.store.Save(lead)
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	saved, err := h.store.Get(id)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, toLeadResponse(saved))
}

// Get godoc
// @Summary Get a lead by ID
// @Router /api/leads/{id} [get]
func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return apierrors.NotFoundError(c, "lead")
		}
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, toLeadResponse(lead))
}

// Delete godoc
// @Summary Delete a lead
// @Router /api/leads/{id} [delete]
func (h *LeadHandler) Delete(c echo.Context) error {
	if err := h.store.Delete(c.Param("id")); err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return apierrors.NotFoundError(c, "lead")
		}
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// History godoc
// @Summary Get a lead's conversation transcript
// @Router /api/leads/{id}/history [get]
func (h *LeadHandler) History(c echo.Context) error {
	if _, err := h.store.Get(c.Param("id")); err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			return apierrors.NotFoundError(c, "lead")
		}
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, h.store.History(c.Param("id")))
}

// Import godoc
// @Summary Import leads from an uploaded CSV
// @Router /api/leads/import [post]
func (h *LeadHandler) Import(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	src, err := file.Open()
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	defer src.Close()

	count, err := h.store.ImportCSV(src)
	if err != nil {
		return apierrors.ValidationError(c, err)
	}
	return c.JSON(http.StatusOK, models.ImportResponse{Success: true, Count: count})
}

// Export godoc
// @Summary Export leads as CSV or Excel
// @Router /api/leads/export [get]
func (h *LeadHandler) Export(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatCSV
	}

	path, count, err := h.exporter.Export(format)
	if err != nil {
		return apierrors.ValidationError(c, err)
	}
	return c.JSON(http.StatusOK, models.ExportResponse{
		Success:  true,
		FilePath: path,
		Format:   format,
		Count:    count,
	})
}

func toLeadResponse(lead leads.Lead) models.LeadResponse {
	resp := models.LeadResponse{
		ID:        lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Notes:     lead.Notes,
		Source:    lead.Source,
		Status:    lead.Status,
		Score:     lead.Score,
		DoNotCall: lead.DoNotCall,
		CreatedAt: lead.CreatedAt.Format(time.RFC3339),
	}
	if lead.UpdatedAt != nil {
		resp.UpdatedAt = lead.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

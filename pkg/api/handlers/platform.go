package handlers

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/outreach/pkg/api/errors"
	"github.com/jordanlanch/outreach/pkg/billing"
	"github.com/jordanlanch/outreach/pkg/models"
	"github.com/jordanlanch/outreach/pkg/platform"
)

// PlatformHandler exposes business profile and subscription endpoints
type PlatformHandler struct {
	platform *platform.Manager
	billing  *billing.Service
	validate *validator.Validate
}

// NewPlatformHandler creates a new platform handler
func NewPlatformHandler(pm *platform.Manager, billingSvc *billing.Service) *PlatformHandler {
	return &PlatformHandler{platform: pm, billing: billingSvc, validate: validator.New()}
}

// GetProfile godoc
// @Summary Get the business profile
// @Router /api/platform/profile [get]
func (h *PlatformHandler) GetProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, h.platform.Profile())
}

// UpdateProfile godoc
// @Summary Partially update the business profile
// @Router /api/platform/profile [put]
func (h *PlatformHandler) UpdateProfile(c echo.Context) error {
	var req models.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	profile, err := h.platform.UpdateProfile(req)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetSubscription godoc
// @Summary Get the subscription and quota state
// @Router /api/platform/subscription [get]
func (h *PlatformHandler) GetSubscription(c echo.Context) error {
	sub := h.platform.Subscription()
	return c.JSON(http.StatusOK, models.SubscriptionResponse{
		IsActive:   sub.IsActive,
		PlanName:   sub.PlanName,
		UsageCount: sub.UsageCount,
		UsageLimit: sub.UsageLimit,
	})
}

// Upgrade godoc
// @Summary Upgrade to the premium plan
// @Router /api/platform/upgrade [post]
func (h *PlatformHandler) Upgrade(c echo.Context) error {
	resp, err := h.billing.CreateCheckoutSession(c.Request().Context())
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, models.UpgradeResponse{
		Success:     true,
		CheckoutURL: resp.URL,
	})
}

// ResetUsage godoc
// @Summary Reset the free-tier usage counter
// @Router /api/platform/reset-usage [post]
func (h *PlatformHandler) ResetUsage(c echo.Context) error {
	if err := h.platform.ResetUsage(); err != nil {
		return apierrors.InternalError(c, err)
	}

	sub := h.platform.Subscription()
	return c.JSON(http.StatusOK, models.SubscriptionResponse{
		IsActive:   sub.IsActive,
		PlanName:   sub.PlanName,
		UsageCount: sub.UsageCount,
		UsageLimit: sub.UsageLimit,
	})
}

// StripeWebhook godoc
// @Summary Receive Stripe webhook events
// @Router /api/webhooks/stripe [post]
func (h *PlatformHandler) StripeWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request().Context(), payload, signature); err != nil {
		return apierrors.ValidationError(c, err)
	}
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/outreach/pkg/agent"
	apierrors "github.com/jordanlanch/outreach/pkg/api/errors"
	"github.com/jordanlanch/outreach/pkg/models"
)

// ChatHandler exposes the conversational agent endpoint
type ChatHandler struct {
	engine   *agent.Engine
	validate *validator.Validate
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *agent.Engine) *ChatHandler {
	return &ChatHandler{engine: engine, validate: validator.New()}
}

// Chat godoc
// @Summary Send a message to the AI agent
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	resp, err := h.engine.Respond(c.Request().Context(), req.Message, req.LeadID)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	actions := make([]models.ChatAction, 0, len(resp.Actions))
	for _, a := range resp.Actions {
		actions = append(actions, models.ChatAction{Type: a.Type, Payload: a.Payload})
	}

	return c.JSON(http.StatusOK, models.ChatResponse{
		Text:      resp.Text,
		Persona:   resp.Persona,
		Timestamp: resp.Timestamp.Format(time.RFC3339),
		Actions:   actions,
		Paywall:   resp.Paywall,
		Error:     resp.Error,
	})
}

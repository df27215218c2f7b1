package errors

import (
	"log"
	"net/http"

	"github.com/jordanlanch/outreach/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a generic validation error without exposing internal details
func ValidationError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	// Log the actual error for debugging
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "The requested resource was not found.",
	})
}

// ConflictError returns a conflict error
func ConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "conflict",
		Message: message, // Message is safe to expose (e.g., "Campaign is running")
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"personapilot/internal/service"
)

// UsageHandler exposes the daily post quota.
type UsageHandler struct {
	usageService service.UsageService
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(usageService service.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// Status godoc
// @Summary Current plan usage
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UsageStatus
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /usage [get]
func (h *UsageHandler) Status(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	status, err := h.usageService.Status(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

// RecordPost godoc
// @Summary Count a generated post against the daily quota
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UsageStatus
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /usage/posts [post]
func (h *UsageHandler) RecordPost(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	status, err := h.usageService.RecordPost(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, status)
}

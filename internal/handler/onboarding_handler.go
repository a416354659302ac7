package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"personapilot/internal/model"
	"personapilot/internal/service"
)

// OnboardingHandler handles the onboarding endpoint.
type OnboardingHandler struct {
	onboardingService service.OnboardingService
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(onboardingService service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// CompleteOnboardingRequest describes the persona picked during onboarding.
type CompleteOnboardingRequest struct {
	Role            string   `json:"role" validate:"required"`
	Industry        string   `json:"industry" validate:"required"`
	ExperienceLevel string   `json:"experienceLevel" validate:"required"`
	BrandingGoal    string   `json:"brandingGoal" validate:"required"`
	Tone            string   `json:"tone" validate:"required"`
	TopicsKeywords  []string `json:"topicsKeywords" validate:"required,min=1,dive,required"`
}

// OnboardingResponse is returned once onboarding is complete.
type OnboardingResponse struct {
	Message      string               `json:"message"`
	User         *model.User          `json:"user"`
	PrimaryRole  *model.Role          `json:"primaryRole"`
	PersonaAudit service.PersonaAudit `json:"personaAudit"`
}

// CompleteOnboarding godoc
// @Summary Complete onboarding
// @Description Creates the default persona role and the initial persona audit.
// @Tags onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompleteOnboardingRequest true "Onboarding answers"
// @Success 200 {object} OnboardingResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/complete-onboarding [post]
func (h *OnboardingHandler) CompleteOnboarding(c echo.Context) error {
	userID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	var req CompleteOnboardingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.onboardingService.Complete(c.Request().Context(), userID, service.OnboardingInput{
		Role:            req.Role,
		Industry:        req.Industry,
		ExperienceLevel: req.ExperienceLevel,
		BrandingGoal:    req.BrandingGoal,
		Tone:            req.Tone,
		TopicsKeywords:  req.TopicsKeywords,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, OnboardingResponse{
		Message:      "Onboarding completed successfully",
		User:         result.User,
		PrimaryRole:  result.PrimaryRole,
		PersonaAudit: result.PersonaAudit,
	})
}

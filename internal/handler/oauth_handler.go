package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"personapilot/internal/model"
	"personapilot/internal/service"
)

// OAuthHandler handles the provider redirect endpoints. Failures never render
// JSON: the browser is sent back to the frontend login page instead.
type OAuthHandler struct {
	oauthService service.OAuthService
}

// NewOAuthHandler creates a new OAuth handler.
func NewOAuthHandler(oauthService service.OAuthService) *OAuthHandler {
	return &OAuthHandler{oauthService: oauthService}
}

// GoogleLogin godoc
// @Summary Start Google login
// @Tags oauth
// @Success 307
// @Router /auth/google [get]
func (h *OAuthHandler) GoogleLogin(c echo.Context) error {
	return h.begin(c, model.ProviderGoogle)
}

// GoogleCallback godoc
// @Summary Finish Google login
// @Tags oauth
// @Param code query string false "Authorization code"
// @Param state query string false "State issued at login start"
// @Success 307
// @Router /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	return h.complete(c, model.ProviderGoogle)
}

// LinkedInLogin godoc
// @Summary Start LinkedIn login
// @Tags oauth
// @Success 307
// @Router /auth/linkedin [get]
func (h *OAuthHandler) LinkedInLogin(c echo.Context) error {
	return h.begin(c, model.ProviderLinkedIn)
}

// LinkedInCallback godoc
// @Summary Finish LinkedIn login
// @Tags oauth
// @Param code query string false "Authorization code"
// @Param state query string false "State issued at login start"
// @Success 307
// @Router /auth/linkedin/callback [get]
func (h *OAuthHandler) LinkedInCallback(c echo.Context) error {
	return h.complete(c, model.ProviderLinkedIn)
}

func (h *OAuthHandler) begin(c echo.Context, provider model.Provider) error {
	target, err := h.oauthService.Begin(c.Request().Context(), provider)
	if err != nil {
		return c.Redirect(http.StatusTemporaryRedirect, h.oauthService.LoginErrorURL(err))
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *OAuthHandler) complete(c echo.Context, provider model.Provider) error {
	target, err := h.oauthService.Complete(c.Request().Context(), provider, c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		return c.Redirect(http.StatusTemporaryRedirect, h.oauthService.LoginErrorURL(err))
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

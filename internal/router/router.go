package router

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"personapilot/internal/auth"
	apperrors "personapilot/internal/errors"
	"personapilot/internal/handler"
	"personapilot/internal/logging"
)

// AccessTokenVerifier verifies bearer access tokens. *auth.JWTService satisfies it.
type AccessTokenVerifier interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth       *handler.AuthHandler
	OAuth      *handler.OAuthHandler
	Onboarding *handler.OnboardingHandler
	Usage      *handler.UsageHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, logger logging.Logger, tokens AccessTokenVerifier, h Handlers) {
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	secured := BearerAuth(tokens)

	// Public routes
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", h.Auth.Signup)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.GET("/verify-email/:token", h.Auth.VerifyEmail)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.POST("/reset-password/:token", h.Auth.ResetPassword)

	// OAuth redirect flow
	authGroup.GET("/google", h.OAuth.GoogleLogin)
	authGroup.GET("/google/callback", h.OAuth.GoogleCallback)
	authGroup.GET("/linkedin", h.OAuth.LinkedInLogin)
	authGroup.GET("/linkedin/callback", h.OAuth.LinkedInCallback)

	// Secured routes (require JWT authentication)
	authGroup.GET("/me", h.Auth.Me, secured)
	authGroup.POST("/logout", h.Auth.Logout, secured)
	authGroup.POST("/resend-verification", h.Auth.ResendVerification, secured)
	authGroup.POST("/change-password", h.Auth.ChangePassword, secured)
	authGroup.PUT("/update-profile", h.Auth.UpdateProfile, secured)
	authGroup.DELETE("/delete-account", h.Auth.DeleteAccount, secured)
	authGroup.POST("/complete-onboarding", h.Onboarding.CompleteOnboarding, secured)

	usage := api.Group("/usage", secured)
	usage.GET("", h.Usage.Status)
	usage.POST("/posts", h.Usage.RecordPost)
}

// BearerAuth verifies the Authorization bearer token and stores its claims
// under handler.ContextUserKey. Every failure is a 401.
func BearerAuth(tokens AccessTokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ContextUserKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return tokens.ValidateAccessToken(token)
		},
		ErrorHandler: func(_ echo.Context, _ error) error {
			return apperrors.ErrInvalidToken
		},
	})
}

func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

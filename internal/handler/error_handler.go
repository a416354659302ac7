package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "personapilot/internal/errors"
	"personapilot/internal/logging"
)

// NewErrorHandler renders every handler error as an ErrorResponse. Domain and
// validation errors keep their status, echo's own errors keep theirs, anything
// else is logged and reported as a generic 500.
func NewErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		var httpErr *apperrors.HTTPError
		if errors.As(err, &he) {
			httpErr = apperrors.NewHTTPError(he.Code, fmt.Sprint(he.Message), statusCode(he.Code))
		} else {
			httpErr = apperrors.MapErrorToHTTP(err)
		}

		ctx := c.Request().Context()
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error(ctx, "request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.Error(ctx, "write error response failed", "error", err)
		}
	}
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

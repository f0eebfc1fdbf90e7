package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/logger"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondData(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Response{Success: true, Data: data})
}

func respondMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{Success: true, Message: message})
}

// NewErrorHandler returns an echo error handler translating domain
// errors into the response envelope. Unexpected errors surface as a
// sanitized 500.
func NewErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *apperr.APIError
		if errors.As(err, &apiErr) {
			_ = c.JSON(apiErr.HTTPCode, Response{
				Success: false,
				Message: apiErr.Message,
				Errors:  apiErr.Fields,
			})
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = c.JSON(httpErr.Code, Response{
				Success: false,
				Message: http.StatusText(httpErr.Code),
			})
			return
		}

		logger.Error("HTTP handler: internal error",
			"path", c.Request().URL.Path,
			"error", err.Error())

		_ = c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Message: "Server Error",
		})
	}
}

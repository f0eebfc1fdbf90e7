package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/logger"
)

// Logging logs HTTP requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Middleware logs method, path, duration and status for each request.
func (l *Logging) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			duration := time.Since(start)

			l.logger.Info("HTTP request completed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"duration_ms", duration.Milliseconds(),
				"status", c.Response().Status)

			if err != nil {
				l.logger.Error("HTTP request failed",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"error", err.Error())
			}

			return nil
		}
	}
}

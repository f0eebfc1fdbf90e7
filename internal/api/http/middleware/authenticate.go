package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/logger"
	"github.com/ndanilenko/marketplace-server/internal/model"
)

const callerContextKey = "caller"

// UserResolver loads the live account for a token subject.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Authenticate validates bearer tokens and attaches the resolved caller
// to the request context. The role comes from the live user record, not
// from the token claims, so promotions and demotions take effect on the
// next request.
type Authenticate struct {
	tokenManager model.TokenManager
	users        UserResolver
	logger       *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, users UserResolver, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, users: users, logger: logger}
}

// Middleware returns the echo middleware function.
func (m *Authenticate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, err := m.authenticate(c)
			if err != nil {
				return err
			}

			c.Set(callerContextKey, caller)
			return next(c)
		}
	}
}

func (m *Authenticate) authenticate(c echo.Context) (model.Caller, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return model.Caller{}, apperr.NewErrUnauthenticated("authorization header required")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return model.Caller{}, apperr.NewErrUnauthenticated("invalid authorization header format")
	}

	userID, _, err := m.tokenManager.Parse(tokenString)
	if err != nil {
		return model.Caller{}, apperr.NewErrUnauthenticated("invalid or expired token")
	}

	user, err := m.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Caller{}, apperr.NewErrUnauthenticated("user not found")
		}
		m.logger.Error("Authenticate middleware: failed to resolve user",
			"user_id", userID,
			"error", err.Error())
		return model.Caller{}, err
	}

	return model.Caller{ID: user.ID, Role: user.Role}, nil
}

// CallerFromContext returns the caller attached by Authenticate.
func CallerFromContext(c echo.Context) (model.Caller, bool) {
	caller, ok := c.Get(callerContextKey).(model.Caller)
	return caller, ok
}

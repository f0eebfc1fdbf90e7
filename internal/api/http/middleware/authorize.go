package middleware

import (
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/model"
)

// RequireRoles gates a route to callers whose live role is in the
// allowed set. It must be composed after Authenticate.
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFromContext(c)
			if !ok || caller.Role == "" {
				return apperr.NewErrForbidden("no role specified")
			}

			if !slices.Contains(roles, caller.Role) {
				return apperr.NewErrForbidden(
					fmt.Sprintf("role %s is not authorized to access this route", caller.Role))
			}

			return next(c)
		}
	}
}

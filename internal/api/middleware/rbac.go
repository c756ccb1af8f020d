package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/core/domain"
)

// RequireRole admits principals holding any of allowedRoles. It backs the
// route policy on handler groups that must never be reachable otherwise.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalOf(c)
			if !p.Authenticated() {
				return domain.ErrUnauthenticated
			}
			for _, role := range allowedRoles {
				if p.HasRole(role) {
					return next(c)
				}
			}
			return domain.ErrForbidden
		}
	}
}

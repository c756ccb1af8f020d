package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/api/metrics"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/security"
)

// Caller answers who the current request runs as. The account service
// satisfies it.
type Caller interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentPrincipal(ctx context.Context) domain.Principal
}

// Authorize enforces the route-permission policy. It must run after
// Principal.
func Authorize(policy *security.Policy, caller Caller, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			path := c.Request().URL.Path
			p := caller.CurrentPrincipal(ctx)

			decision := policy.Decide(path, caller.IsAuthenticated(ctx), p.IsAdmin())
			if decision == security.Allow {
				return next(c)
			}

			metrics.AuthorizationDenialsTotal.
				WithLabelValues(policy.RequirementFor(path).String(), decision.String()).
				Inc()
			log.Debug().
				Str("path", path).
				Str("principal", p.Name).
				Str("decision", decision.String()).
				Msg("request denied by policy")

			switch decision {
			case security.RedirectHome:
				return c.Redirect(http.StatusFound, security.HomePath)
			case security.RedirectLogin:
				if wantsJSON(c) {
					return domain.ErrUnauthenticated
				}
				return c.Redirect(http.StatusFound, security.LoginPath)
			default:
				return domain.ErrForbidden
			}
		}
	}
}

// wantsJSON reports whether the caller is an API client rather than a
// browser that can follow a redirect to the login page.
func wantsJSON(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}

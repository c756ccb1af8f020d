package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/core/domain"
)

// csrfContextKey is where echo's CSRF middleware leaves the request token.
const csrfContextKey = "csrf"

// principalOf returns the principal the Principal middleware attached to the
// request. Requests that bypassed the middleware run as anonymous.
func principalOf(c echo.Context) domain.Principal {
	return domain.PrincipalFrom(c.Request().Context())
}

// csrfToken returns the token forms must echo back in _csrf.
func csrfToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}

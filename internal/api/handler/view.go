package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// page is the model handed to the client for a named view.
type page struct {
	View          string            `json:"view"`
	CSRF          string            `json:"csrf,omitempty"`
	Principal     *domain.Principal `json:"principal,omitempty"`
	Authenticated bool              `json:"authenticated"`
	Error         string            `json:"error,omitempty"`
	Username      string            `json:"username,omitempty"`
	Accounts      []ports.UserForm  `json:"accounts,omitempty"`
	Providers     []string          `json:"providers,omitempty"`
}

func render(c echo.Context, view string, opts ...func(*page)) error {
	p := principalOf(c)
	pg := page{
		View:          view,
		CSRF:          csrfToken(c),
		Authenticated: p.Authenticated(),
	}
	if pg.Authenticated {
		pg.Principal = &p
	}
	for _, opt := range opts {
		opt(&pg)
	}
	return c.JSON(http.StatusOK, pg)
}

func withError(msg string) func(*page) {
	return func(p *page) { p.Error = msg }
}

func withUsername(username string) func(*page) {
	return func(p *page) { p.Username = username }
}

func withAccounts(accounts []ports.UserForm) func(*page) {
	return func(p *page) { p.Accounts = accounts }
}

func withProviders(names ...string) func(*page) {
	return func(p *page) { p.Providers = names }
}

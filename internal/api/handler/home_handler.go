package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/core/ports"
)

// HomeHandler serves the landing pages, dashboards and the principal
// descriptor.
type HomeHandler struct {
	accounts ports.AccountService
}

func NewHomeHandler(accounts ports.AccountService) *HomeHandler {
	return &HomeHandler{accounts: accounts}
}

// Index renders the landing page.
//
// @Summary      Landing page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  page
// @Router       / [get]
func (h *HomeHandler) Index(c echo.Context) error {
	return render(c, "index")
}

// Home renders the home page.
//
// @Summary      Home page
// @Tags         pages
// @Produce      json
// @Success      200  {object}  page
// @Router       /home [get]
func (h *HomeHandler) Home(c echo.Context) error {
	return render(c, "home")
}

// Error renders the generic error page.
func (h *HomeHandler) Error(c echo.Context) error {
	return render(c, "error", withError(c.QueryParam("message")))
}

// Dashboard renders the dashboard of an authenticated account.
//
// @Summary      User dashboard
// @Tags         pages
// @Produce      json
// @Success      200  {object}  page
// @Failure      401  {object}  map[string]string
// @Router       /dashboard [get]
func (h *HomeHandler) Dashboard(c echo.Context) error {
	return render(c, "dashboard")
}

// AdminDashboard renders the administrator dashboard.
//
// @Summary      Administrator dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  page
// @Failure      403  {object}  map[string]string
// @Router       /admin-dashboard [get]
func (h *HomeHandler) AdminDashboard(c echo.Context) error {
	return render(c, "admin-dashboard")
}

// CurrentUser returns the descriptor of the principal the request runs as.
// Principals from an external provider carry the provider's subject as name.
//
// @Summary      Current principal
// @Tags         accounts
// @Produce      json
// @Success      200  {object}  domain.Principal
// @Failure      401  {object}  map[string]string
// @Router       /user [get]
func (h *HomeHandler) CurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, h.accounts.CurrentPrincipal(c.Request().Context()))
}

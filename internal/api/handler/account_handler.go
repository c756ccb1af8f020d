package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/api/metrics"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// AccountHandler serves registration and the administrator account views.
type AccountHandler struct {
	accounts ports.AccountService
	log      zerolog.Logger
}

func NewAccountHandler(accounts ports.AccountService, log zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		log:      log.With().Str("handler", "account").Logger(),
	}
}

// registerRequest is the registration form. Any role the client submits is
// ignored; the endpoint decides the role.
type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=5"`
	// bcrypt ignores everything past 72 bytes.
	Password string `json:"password" form:"password" validate:"required,min=5,max=72"`
}

type usernameRequest struct {
	Username string `json:"username" form:"username" query:"username"`
}

// ShowRegister renders the self-registration page.
//
// @Summary      Registration page
// @Tags         accounts
// @Produce      json
// @Param        error  query     string  false  "set after a failed attempt"
// @Success      200    {object}  page
// @Router       /register [get]
func (h *AccountHandler) ShowRegister(c echo.Context) error {
	if c.QueryParams().Has("error") {
		return render(c, "register", withError(MsgUserAlreadyExists))
	}
	return render(c, "register")
}

// Register creates a ROLE_USER account and redirects to the landing page.
//
// @Summary      Register an account
// @Tags         accounts
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "at least 5 characters"
// @Param        password  formData  string  true  "at least 5 characters"
// @Success      302
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	return h.register(c, domain.RoleUser, "/")
}

// ShowAddAdmin renders the administrator registration page.
//
// @Summary      Administrator registration page
// @Tags         admin
// @Produce      json
// @Success      200  {object}  page
// @Router       /add-admin [get]
func (h *AccountHandler) ShowAddAdmin(c echo.Context) error {
	if c.QueryParams().Has("error") {
		return render(c, "add-admin", withError(MsgUserAlreadyExists))
	}
	return render(c, "add-admin")
}

// AddAdmin creates a ROLE_ADMIN account.
//
// @Summary      Register an administrator
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "at least 5 characters"
// @Param        password  formData  string  true  "at least 5 characters"
// @Success      302
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /add-admin [post]
func (h *AccountHandler) AddAdmin(c echo.Context) error {
	return h.register(c, domain.RoleAdmin, "/")
}

func (h *AccountHandler) register(c echo.Context, role, next string) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	form := ports.UserForm{
		Username: req.Username,
		Password: req.Password,
		Roles:    []string{role},
	}
	if err := h.accounts.Register(c.Request().Context(), form); err != nil {
		return h.fail(c, "register", err)
	}

	metrics.AccountsRegisteredTotal.WithLabelValues(role).Inc()

	return c.Redirect(http.StatusFound, next)
}

// ListAll returns every account.
//
// @Summary      List all accounts
// @Tags         admin
// @Produce      json
// @Success      200  {array}   ports.UserForm
// @Failure      404  {object}  map[string]string
// @Router       /all-accounts [get]
func (h *AccountHandler) ListAll(c echo.Context) error {
	return h.list(c, h.accounts.ListAll)
}

// ListAdmins returns accounts holding ROLE_ADMIN.
//
// @Summary      List administrators
// @Tags         admin
// @Produce      json
// @Success      200  {array}   ports.UserForm
// @Failure      404  {object}  map[string]string
// @Router       /admins [get]
func (h *AccountHandler) ListAdmins(c echo.Context) error {
	return h.list(c, h.accounts.ListAdmins)
}

// ListUsers returns accounts without ROLE_ADMIN.
//
// @Summary      List regular users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   ports.UserForm
// @Failure      404  {object}  map[string]string
// @Router       /users [get]
func (h *AccountHandler) ListUsers(c echo.Context) error {
	return h.list(c, h.accounts.ListNonAdmins)
}

func (h *AccountHandler) list(c echo.Context, fetch func(context.Context) ([]ports.UserForm, error)) error {
	forms, err := fetch(c.Request().Context())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(http.StatusOK, forms)
}

// ShowMakeAdmin renders the promotion page listing every non-admin account.
//
// @Summary      Promotion candidates
// @Tags         admin
// @Produce      json
// @Success      200  {object}  page
// @Failure      404  {object}  map[string]string
// @Router       /make-admin [get]
func (h *AccountHandler) ShowMakeAdmin(c echo.Context) error {
	forms, err := h.accounts.ListNonAdmins(c.Request().Context())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return render(c, "make-admin", withAccounts(forms))
}

// MakeAdmin promotes the named account and redirects to the confirmation view.
//
// @Summary      Promote an account to administrator
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "account to promote"
// @Success      302
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /make-admin-account [post]
func (h *AccountHandler) MakeAdmin(c echo.Context) error {
	username, err := bindUsername(c)
	if err != nil {
		return err
	}

	if err := h.accounts.PromoteToAdmin(c.Request().Context(), username); err != nil {
		return h.fail(c, "promote", err)
	}

	metrics.AccountsPromotedTotal.Inc()

	return c.Redirect(http.StatusFound, "/make-admin-success?"+url.Values{"username": {username}}.Encode())
}

// MakeAdminSuccess confirms a promotion.
func (h *AccountHandler) MakeAdminSuccess(c echo.Context) error {
	return render(c, "make-admin-success", withUsername(c.QueryParam("username")))
}

// ShowDeleteAccount renders the deletion page listing every account except
// the caller's own.
//
// @Summary      Deletion candidates
// @Tags         admin
// @Produce      json
// @Success      200  {object}  page
// @Failure      404  {object}  map[string]string
// @Router       /delete-account [get]
func (h *AccountHandler) ShowDeleteAccount(c echo.Context) error {
	forms, err := h.accounts.ListExcludingCurrentUser(c.Request().Context())
	if err != nil {
		return h.fail(c, "list", err)
	}
	return render(c, "delete-account", withAccounts(forms))
}

// DeleteAccount removes the named account and redirects to the confirmation
// view.
//
// @Summary      Delete an account
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "account to delete"
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /delete-user-account [post]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	username, err := bindUsername(c)
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteAccount(c.Request().Context(), username); err != nil {
		return h.fail(c, "delete", err)
	}

	metrics.AccountsDeletedTotal.Inc()

	return c.Redirect(http.StatusFound, "/delete-success?"+url.Values{"username": {username}}.Encode())
}

// DeleteSuccess confirms a deletion.
func (h *AccountHandler) DeleteSuccess(c echo.Context) error {
	return render(c, "delete-success", withUsername(c.QueryParam("username")))
}

// fail records a failed account operation and hands err to the error handler.
func (h *AccountHandler) fail(c echo.Context, op string, err error) error {
	metrics.AccountErrorsTotal.WithLabelValues(op, errorKindLabel(err)).Inc()
	h.log.Debug().
		Err(err).
		Str("operation", op).
		Str("principal", principalOf(c).Name).
		Msg("account operation failed")
	return err
}

// bindUsername reads the bare username parameter of the admin mutations. An
// absent value is passed through so the service reports it.
func bindUsername(c echo.Context) (string, error) {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return req.Username, nil
}

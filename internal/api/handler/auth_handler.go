package handler

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/api/metrics"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
	"github.com/authsec/account-system/internal/security"
)

// oauthStateCookie carries the state value of an in-flight provider login.
const oauthStateCookie = "oauth2-state"

const oauthStateTTL = 10 * time.Minute

// AuthHandler serves native login, third-party login and logout.
type AuthHandler struct {
	accounts   ports.AccountService
	auth       ports.Authenticator
	sessions   ports.SessionStore
	rememberMe *security.RememberMe
	cookies    *cookie.Jar
	providers  map[string]ports.IdentityProvider
	log        zerolog.Logger
}

func NewAuthHandler(
	accounts ports.AccountService,
	auth ports.Authenticator,
	sessions ports.SessionStore,
	rememberMe *security.RememberMe,
	cookies *cookie.Jar,
	log zerolog.Logger,
	providers ...ports.IdentityProvider,
) *AuthHandler {
	byName := make(map[string]ports.IdentityProvider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthHandler{
		accounts:   accounts,
		auth:       auth,
		sessions:   sessions,
		rememberMe: rememberMe,
		cookies:    cookies,
		providers:  byName,
		log:        log.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Username   string `form:"username" json:"username"`
	Password   string `form:"password" json:"password"`
	RememberMe string `form:"remember-me" json:"remember-me"`
}

// ShowLogin renders the native login page with links to the configured
// identity providers.
//
// @Summary      Login page
// @Tags         auth
// @Produce      json
// @Param        error  query     string  false  "set after a failed attempt"
// @Success      200    {object}  page
// @Router       /native-login [get]
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	if h.accounts.IsAuthenticated(c.Request().Context()) {
		return c.Redirect(http.StatusFound, security.HomePath)
	}
	opts := []func(*page){withProviders(h.providerNames()...)}
	if c.QueryParams().Has("error") {
		opts = append(opts, withError(MsgInvalidCredentials))
	}
	return render(c, "native-login", opts...)
}

// Login checks the submitted credentials, opens a session and optionally
// issues a remember-me token. Failures return to the login page.
//
// @Summary      Log in with username and password
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        username     formData  string  true   "username"
// @Param        password     formData  string  true   "password"
// @Param        remember-me  formData  string  false  "persist the login"
// @Success      302
// @Router       /native-login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.Redirect(http.StatusFound, security.LoginPath+"?error")
	}

	ctx := c.Request().Context()
	user, p, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthForm), "failure").Inc()
		if !errors.Is(err, domain.ErrInvalidCredentials) && !errors.Is(err, domain.ErrAccountDisabled) {
			return err
		}
		h.log.Info().Str("username", req.Username).Err(err).Msg("login rejected")
		return c.Redirect(http.StatusFound, security.LoginPath+"?error")
	}

	if err := h.openSession(c, p); err != nil {
		return err
	}

	if rememberRequested(req.RememberMe) && h.rememberMe != nil {
		token, err := h.rememberMe.Issue(security.NewUserDetails(user))
		if err != nil {
			h.log.Error().Err(err).Str("username", p.Name).Msg("remember-me token not issued")
		} else {
			h.cookies.SetRememberMe(c, token)
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthForm), "success").Inc()
	h.log.Info().Str("username", p.Name).Msg("login succeeded")
	return c.Redirect(http.StatusFound, security.HomePath)
}

// Logout ends the session and forgets any remember-me token.
//
// @Summary      Log out
// @Tags         auth
// @Success      302
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if id := h.cookies.SessionID(c); id != "" {
		if err := h.sessions.Delete(c.Request().Context(), id); err != nil {
			h.log.Warn().Err(err).Msg("session not deleted on logout")
		}
	}
	h.cookies.ClearSession(c)
	h.cookies.ClearRememberMe(c)

	if p := principalOf(c); p.Authenticated() {
		h.log.Info().Str("username", p.Name).Msg("logged out")
	}
	return c.Redirect(http.StatusFound, "/")
}

// StartOAuth redirects to the named identity provider.
//
// @Summary      Start third-party login
// @Tags         auth
// @Param        provider  path  string  true  "provider name"
// @Success      302
// @Failure      404  {object}  map[string]string
// @Router       /oauth2/authorization/{provider} [get]
func (h *AuthHandler) StartOAuth(c echo.Context) error {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown identity provider")
	}

	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// OAuthCallback completes a third-party login.
//
// @Summary      Third-party login callback
// @Tags         auth
// @Param        provider  path   string  true  "provider name"
// @Param        code      query  string  true  "authorization code"
// @Param        state     query  string  true  "state issued at start"
// @Success      302
// @Router       /login/oauth2/code/{provider} [get]
func (h *AuthHandler) OAuthCallback(c echo.Context) error {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown identity provider")
	}

	fail := func(reason string, err error) error {
		metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthOAuth2), "failure").Inc()
		h.log.Warn().Err(err).Str("provider", provider.Name()).Msg(reason)
		return c.Redirect(http.StatusFound, security.LoginPath+"?error")
	}

	stateCookie, err := c.Cookie(oauthStateCookie)
	c.SetCookie(&http.Cookie{Name: oauthStateCookie, Path: "/", MaxAge: -1, HttpOnly: true})
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return fail("oauth2 state mismatch", err)
	}
	if msg := c.QueryParam("error"); msg != "" {
		return fail("provider refused login", errors.New(msg))
	}

	ctx := c.Request().Context()
	identity, err := provider.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		return fail("oauth2 exchange failed", err)
	}

	p, err := h.auth.External(ctx, identity)
	if err != nil {
		return fail("external identity rejected", err)
	}
	if err := h.openSession(c, p); err != nil {
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthOAuth2), "success").Inc()
	h.log.Info().Str("username", p.Name).Str("provider", provider.Name()).Msg("login succeeded")
	return c.Redirect(http.StatusFound, security.HomePath)
}

// openSession replaces any session the client holds with one for p.
func (h *AuthHandler) openSession(c echo.Context, p domain.Principal) error {
	ctx := c.Request().Context()
	if old := h.cookies.SessionID(c); old != "" {
		_ = h.sessions.Delete(ctx, old)
	}

	id, err := h.sessions.Create(ctx, p)
	if err != nil {
		return err
	}
	h.cookies.SetSession(c, id)
	return nil
}

func (h *AuthHandler) providerNames() []string {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func rememberRequested(v string) bool {
	switch v {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

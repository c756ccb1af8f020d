package api

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/api/handler"
	"github.com/authsec/account-system/internal/api/middleware"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
	"github.com/authsec/account-system/internal/security"
)

// CSRF token transport shared with the pages.
const (
	csrfCookieName = "XSRF-TOKEN"
	csrfHeaderName = "X-XSRF-TOKEN"
	csrfFormField  = "_csrf"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Accounts      ports.AccountService
	Authenticator ports.Authenticator
	Sessions      ports.SessionStore
	RememberMe    *security.RememberMe
	Cookies       *cookie.Jar
	Policy        *security.Policy
	Providers     []ports.IdentityProvider
	// Readiness lists the dependency checks behind /health/ready.
	Readiness map[string]handler.Pinger
	StaticDir string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	policy := d.Policy
	if policy == nil {
		policy = security.DefaultPolicy()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:" + csrfFormField + ",header:" + csrfHeaderName,
		CookieName:     csrfCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: false,
		CookieSecure:   d.Cookies.Secure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	e.Use(middleware.Principal(middleware.PrincipalConfig{
		Sessions:      d.Sessions,
		RememberMe:    d.RememberMe,
		Authenticator: d.Authenticator,
		Cookies:       d.Cookies,
		Log:           d.Log,
	}))
	e.Use(middleware.Authorize(policy, d.Accounts, d.Log))

	// --- Static assets ---
	if d.StaticDir != "" {
		for _, dir := range []string{"bootstrap", "jquery", "fragments", "webjars"} {
			e.Static("/"+dir, filepath.Join(d.StaticDir, dir))
		}
		e.File("/styles.css", filepath.Join(d.StaticDir, "styles.css"))
	}

	// --- Pages ---
	home := handler.NewHomeHandler(d.Accounts)
	e.GET("/", home.Index)
	e.GET(security.HomePath, home.Home)
	e.GET("/error", home.Error)
	e.GET("/dashboard", home.Dashboard)
	e.GET("/user", home.CurrentUser)

	// --- Authentication ---
	authHandler := handler.NewAuthHandler(d.Accounts, d.Authenticator, d.Sessions, d.RememberMe, d.Cookies, d.Log, d.Providers...)
	e.GET(security.LoginPath, authHandler.ShowLogin)
	e.POST(security.LoginPath, authHandler.Login)
	e.POST(security.LogoutPath, authHandler.Logout)
	e.GET("/oauth2/authorization/:provider", authHandler.StartOAuth)
	e.GET("/login/oauth2/code/:provider", authHandler.OAuthCallback)

	// --- Accounts ---
	accounts := handler.NewAccountHandler(d.Accounts, d.Log)
	e.GET("/register", accounts.ShowRegister)
	e.POST("/register", accounts.Register)

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	e.GET("/admin-dashboard", home.AdminDashboard, adminOnly)
	e.GET("/add-admin", accounts.ShowAddAdmin, adminOnly)
	e.POST("/add-admin", accounts.AddAdmin, adminOnly)
	e.GET("/all-accounts", accounts.ListAll, adminOnly)
	e.GET("/admins", accounts.ListAdmins, adminOnly)
	e.GET("/users", accounts.ListUsers, adminOnly)
	e.GET("/make-admin", accounts.ShowMakeAdmin, adminOnly)
	e.POST("/make-admin-account", accounts.MakeAdmin, adminOnly)
	e.GET("/make-admin-success", accounts.MakeAdminSuccess, adminOnly)
	e.GET("/delete-account", accounts.ShowDeleteAccount, adminOnly)
	e.POST("/delete-user-account", accounts.DeleteAccount, adminOnly)
	e.GET("/delete-success", accounts.DeleteSuccess, adminOnly)

	// --- Operations (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

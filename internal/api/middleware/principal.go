package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/api/metrics"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
	"github.com/authsec/account-system/internal/security"
)

// PrincipalKey is the echo context key the resolved principal is stored under.
const PrincipalKey = "principal"

// PrincipalConfig wires the collaborators used to resolve who a request runs as.
type PrincipalConfig struct {
	Sessions      ports.SessionStore
	RememberMe    *security.RememberMe
	Authenticator ports.Authenticator
	Cookies       *cookie.Jar
	Log           zerolog.Logger
}

// Principal resolves the caller from the session cookie, falling back to the
// remember-me cookie, and attaches the result to the request context. The
// principal is resolved afresh on every request.
func Principal(cfg PrincipalConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := resolve(c, cfg)

			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), p)))
			c.Set(PrincipalKey, p)

			return next(c)
		}
	}
}

func resolve(c echo.Context, cfg PrincipalConfig) domain.Principal {
	ctx := c.Request().Context()

	if id := cfg.Cookies.SessionID(c); id != "" {
		p, err := cfg.Sessions.Get(ctx, id)
		if err == nil && p.Authenticated() {
			p, err = refresh(ctx, cfg, p)
			if err == nil {
				return p
			}
			if !revoked(err) {
				cfg.Log.Warn().Err(err).Str("username", p.Name).Msg("session account reload failed")
				return domain.Anonymous()
			}
			cfg.Log.Info().Err(err).Str("username", p.Name).Msg("session dropped: account no longer usable")
			if delErr := cfg.Sessions.Delete(ctx, id); delErr != nil {
				cfg.Log.Warn().Err(delErr).Msg("session delete failed")
			}
		}
		if err != nil && !revoked(err) {
			cfg.Log.Warn().Err(err).Msg("session lookup failed")
		}
		cfg.Cookies.ClearSession(c)
	}

	if token := cfg.Cookies.RememberMe(c); token != "" && cfg.RememberMe != nil {
		p, err := resume(ctx, c, cfg, token)
		if err == nil {
			return p
		}
		cfg.Log.Debug().Err(err).Msg("remember-me login rejected")
		metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthRememberMe), "failure").Inc()
		cfg.Cookies.ClearRememberMe(c)
	}

	return domain.Anonymous()
}

// refresh reloads the account behind a session so deletions, disabled flags
// and role changes apply to live sessions. Provider logins have no local
// account and are returned unchanged.
func refresh(ctx context.Context, cfg PrincipalConfig, p domain.Principal) (domain.Principal, error) {
	if p.Method == domain.AuthOAuth2 {
		return p, nil
	}
	user, _, err := cfg.Authenticator.Resume(ctx, p.Name)
	if err != nil {
		return p, err
	}
	p.Roles = user.RoleNames()
	return p, nil
}

func revoked(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrAccountDisabled)
}

// resume turns a valid remember-me token into a fresh session.
func resume(ctx context.Context, c echo.Context, cfg PrincipalConfig, token string) (domain.Principal, error) {
	claims, err := cfg.RememberMe.Parse(token)
	if err != nil {
		return domain.Principal{}, err
	}

	user, p, err := cfg.Authenticator.Resume(ctx, claims.Subject)
	if err != nil {
		return domain.Principal{}, err
	}
	if !cfg.RememberMe.Bound(claims, user) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	id, err := cfg.Sessions.Create(ctx, p)
	if err != nil {
		return domain.Principal{}, err
	}
	cfg.Cookies.SetSession(c, id)

	metrics.LoginAttemptsTotal.WithLabelValues(string(domain.AuthRememberMe), "success").Inc()
	cfg.Log.Info().Str("username", p.Name).Msg("session restored from remember-me token")
	return p, nil
}

// PrincipalOf returns the principal attached by Principal, or the anonymous
// principal.
func PrincipalOf(c echo.Context) domain.Principal {
	return domain.PrincipalFrom(c.Request().Context())
}

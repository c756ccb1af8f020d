package middleware

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/security"
)

func runPrincipal(t *testing.T, cfg PrincipalConfig, cookies ...*http.Cookie) (domain.Principal, *http.Response) {
	t.Helper()
	c, rec := newContext(http.MethodGet, "/user")
	for _, ck := range cookies {
		c.Request().AddCookie(ck)
	}

	var seen domain.Principal
	err := Principal(cfg)(func(c echo.Context) error {
		seen = PrincipalOf(c)
		require.Equal(t, seen, c.Get(PrincipalKey))
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return seen, rec.Result()
}

func TestPrincipal_AnonymousWithoutCookies(t *testing.T) {
	cfg := PrincipalConfig{
		Sessions:      newMemSessions(),
		Authenticator: &stubAuthenticator{},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg)
	require.False(t, p.Authenticated())
	require.Equal(t, domain.AnonymousName, p.Name)
}

func TestPrincipal_FromSession(t *testing.T) {
	sessions := newMemSessions()
	id, _ := sessions.Create(t.Context(), userPrincipal("alice", domain.RoleUser))
	alice := domain.NewActiveUser("alice", "h:secret", []domain.Role{domain.NewRole(domain.RoleUser)}, time.Now())
	cfg := PrincipalConfig{
		Sessions:      sessions,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{"alice": alice}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: id})
	require.True(t, p.Authenticated())
	require.Equal(t, "alice", p.Name)
	require.Equal(t, domain.AuthForm, p.Method)
}

func TestPrincipal_SessionPicksUpRoleChanges(t *testing.T) {
	sessions := newMemSessions()
	id, _ := sessions.Create(t.Context(), userPrincipal("alice", domain.RoleUser))
	promoted := domain.NewActiveUser("alice", "h:secret", []domain.Role{domain.NewRole(domain.RoleAdmin)}, time.Now())
	cfg := PrincipalConfig{
		Sessions:      sessions,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{"alice": promoted}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: id})
	require.True(t, p.IsAdmin())
	require.Equal(t, domain.AuthForm, p.Method)
}

func TestPrincipal_SessionForDeletedAccountIsDropped(t *testing.T) {
	sessions := newMemSessions()
	id, _ := sessions.Create(t.Context(), userPrincipal("mallory", domain.RoleAdmin))
	cfg := PrincipalConfig{
		Sessions:      sessions,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, res := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: id})
	require.False(t, p.Authenticated())
	require.Empty(t, sessions.byID)

	var cleared bool
	for _, ck := range res.Cookies() {
		if ck.Name == "SESSION" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "session cookie should be expired")
}

func TestPrincipal_SessionForLockedAccountIsDropped(t *testing.T) {
	sessions := newMemSessions()
	id, _ := sessions.Create(t.Context(), userPrincipal("alice", domain.RoleAdmin))
	locked := domain.NewActiveUser("alice", "h:secret", []domain.Role{domain.NewRole(domain.RoleAdmin)}, time.Now())
	locked.AccountNonLocked = false
	cfg := PrincipalConfig{
		Sessions:      sessions,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{"alice": locked}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: id})
	require.False(t, p.Authenticated())
	require.Empty(t, sessions.byID)
}

func TestPrincipal_OAuthSessionSkipsAccountReload(t *testing.T) {
	sessions := newMemSessions()
	id, _ := sessions.Create(t.Context(), domain.Principal{Name: "octocat", Roles: []string{domain.RoleUser}, Method: domain.AuthOAuth2})
	cfg := PrincipalConfig{
		Sessions:      sessions,
		Authenticator: &stubAuthenticator{},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: id})
	require.True(t, p.Authenticated())
	require.Equal(t, "octocat", p.Name)
}

func TestPrincipal_UnknownSessionIsCleared(t *testing.T) {
	cfg := PrincipalConfig{
		Sessions:      newMemSessions(),
		Authenticator: &stubAuthenticator{},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, res := runPrincipal(t, cfg, &http.Cookie{Name: "SESSION", Value: "stale"})
	require.False(t, p.Authenticated())

	var cleared bool
	for _, ck := range res.Cookies() {
		if ck.Name == "SESSION" && ck.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "stale session cookie should be expired")
}

func TestPrincipal_RememberMeOpensSession(t *testing.T) {
	user := domain.NewActiveUser("alice", "h:secret", []domain.Role{domain.NewRole(domain.RoleUser)}, time.Now())
	rm := security.NewRememberMe("test-key", time.Hour)
	token, err := rm.Issue(security.NewUserDetails(user))
	require.NoError(t, err)

	sessions := newMemSessions()
	cfg := PrincipalConfig{
		Sessions:      sessions,
		RememberMe:    rm,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{"alice": user}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, res := runPrincipal(t, cfg, &http.Cookie{Name: "remember-me", Value: token})
	require.True(t, p.Authenticated())
	require.Equal(t, domain.AuthRememberMe, p.Method)
	require.Len(t, sessions.byID, 1)

	var issued string
	for _, ck := range res.Cookies() {
		if ck.Name == "SESSION" {
			issued = ck.Value
		}
	}
	require.True(t, strings.HasPrefix(issued, "sess-"))
}

func TestPrincipal_RememberMeRejectedAfterPasswordChange(t *testing.T) {
	user := domain.NewActiveUser("alice", "h:secret", []domain.Role{domain.NewRole(domain.RoleUser)}, time.Now())
	rm := security.NewRememberMe("test-key", time.Hour)
	token, err := rm.Issue(security.NewUserDetails(user))
	require.NoError(t, err)

	changed := domain.NewActiveUser("alice", "h:rotated", user.Roles, time.Now())
	sessions := newMemSessions()
	cfg := PrincipalConfig{
		Sessions:      sessions,
		RememberMe:    rm,
		Authenticator: &stubAuthenticator{users: map[string]*domain.User{"alice": changed}},
		Cookies:       testJar(),
		Log:           zerolog.Nop(),
	}

	p, _ := runPrincipal(t, cfg, &http.Cookie{Name: "remember-me", Value: token})
	require.False(t, p.Authenticated())
	require.Empty(t, sessions.byID)
}

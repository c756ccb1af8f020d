package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

type memSessions struct {
	byID map[string]domain.Principal
	seq  int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]domain.Principal{}}
}

func (m *memSessions) Create(_ context.Context, p domain.Principal) (string, error) {
	m.seq++
	id := fmt.Sprintf("sess-%d", m.seq)
	m.byID[id] = p
	return id, nil
}

func (m *memSessions) Get(_ context.Context, id string) (domain.Principal, error) {
	p, ok := m.byID[id]
	if !ok {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return p, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type stubAuthenticator struct {
	users map[string]*domain.User
}

func (s *stubAuthenticator) Authenticate(context.Context, string, string) (*domain.User, domain.Principal, error) {
	return nil, domain.Principal{}, domain.ErrInvalidCredentials
}

func (s *stubAuthenticator) Resume(_ context.Context, username string) (*domain.User, domain.Principal, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, domain.Principal{}, domain.ErrUnauthenticated
	}
	if !u.CanAuthenticate() {
		return nil, domain.Principal{}, domain.ErrAccountDisabled
	}
	return u, domain.NewPrincipal(u, domain.AuthRememberMe), nil
}

func (s *stubAuthenticator) External(context.Context, ports.ExternalIdentity) (domain.Principal, error) {
	return domain.Principal{}, domain.ErrUnauthenticated
}

// contextCaller reads the principal the Principal middleware attached.
type contextCaller struct {
	authenticated func(domain.Principal) bool
}

func (c contextCaller) IsAuthenticated(ctx context.Context) bool {
	p := domain.PrincipalFrom(ctx)
	if c.authenticated != nil {
		return c.authenticated(p)
	}
	return p.Authenticated()
}

func (contextCaller) CurrentPrincipal(ctx context.Context) domain.Principal {
	return domain.PrincipalFrom(ctx)
}

func testJar() *cookie.Jar {
	return &cookie.Jar{
		SessionName:    "SESSION",
		RememberMeName: "remember-me",
		SessionTTL:     30 * time.Minute,
		RememberMeTTL:  time.Hour,
	}
}

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p domain.Principal) {
	req := c.Request()
	c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), p)))
}

func userPrincipal(name string, roles ...string) domain.Principal {
	return domain.Principal{Name: name, Roles: roles, Method: domain.AuthForm}
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

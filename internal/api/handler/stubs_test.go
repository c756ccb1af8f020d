package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/authsec/account-system/internal/api/cookie"
	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

type stubAccountService struct {
	registerFn func(ctx context.Context, form ports.UserForm) error
	listFn     func(ctx context.Context) ([]ports.UserForm, error)
	promoteFn  func(ctx context.Context, username string) error
	deleteFn   func(ctx context.Context, username string) error
}

func (s *stubAccountService) LoadByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubAccountService) Register(ctx context.Context, form ports.UserForm) error {
	return s.registerFn(ctx, form)
}

func (s *stubAccountService) ListAll(ctx context.Context) ([]ports.UserForm, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) ListAdmins(ctx context.Context) ([]ports.UserForm, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) ListNonAdmins(ctx context.Context) ([]ports.UserForm, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) ListExcludingCurrentUser(ctx context.Context) ([]ports.UserForm, error) {
	return s.listFn(ctx)
}

func (s *stubAccountService) PromoteToAdmin(ctx context.Context, username string) error {
	return s.promoteFn(ctx, username)
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, username string) error {
	return s.deleteFn(ctx, username)
}

func (s *stubAccountService) IsAuthenticated(ctx context.Context) bool {
	return domain.PrincipalFrom(ctx).Authenticated()
}

func (s *stubAccountService) CurrentPrincipal(ctx context.Context) domain.Principal {
	return domain.PrincipalFrom(ctx)
}

type stubAuthenticator struct {
	users    map[string]string
	disabled map[string]bool
}

func (s *stubAuthenticator) Authenticate(_ context.Context, username, password string) (*domain.User, domain.Principal, error) {
	pw, ok := s.users[username]
	if !ok || pw != password {
		return nil, domain.Principal{}, domain.ErrInvalidCredentials
	}
	if s.disabled[username] {
		return nil, domain.Principal{}, domain.ErrAccountDisabled
	}
	u := domain.NewActiveUser(username, "h:"+pw, []domain.Role{domain.NewRole(domain.RoleUser)}, time.Now())
	return u, domain.NewPrincipal(u, domain.AuthForm), nil
}

func (s *stubAuthenticator) Resume(context.Context, string) (*domain.User, domain.Principal, error) {
	return nil, domain.Principal{}, domain.ErrUnauthenticated
}

func (s *stubAuthenticator) External(_ context.Context, id ports.ExternalIdentity) (domain.Principal, error) {
	return domain.Principal{Name: id.Username, Roles: []string{domain.RoleUser}, Method: domain.AuthOAuth2}, nil
}

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

type fakeProvider struct {
	identity ports.ExternalIdentity
	err      error
}

func (f *fakeProvider) Name() string { return "github" }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example/authorize?state=" + state
}

func (f *fakeProvider) Exchange(context.Context, string) (ports.ExternalIdentity, error) {
	return f.identity, f.err
}

func testJar() *cookie.Jar {
	return &cookie.Jar{
		SessionName:    "SESSION",
		RememberMeName: "remember-me",
		SessionTTL:     30 * time.Minute,
		RememberMeTTL:  time.Hour,
	}
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func asPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(domain.WithPrincipal(req.Context(), p))
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

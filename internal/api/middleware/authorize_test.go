package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/security"
)

func TestAuthorize(t *testing.T) {
	mw := Authorize(security.DefaultPolicy(), contextCaller{}, zerolog.Nop())

	tests := []struct {
		name      string
		path      string
		principal *domain.Principal
		accept    string
		wantCode  int
		wantLoc   string
		wantErr   error
	}{
		{name: "public page anonymous", path: "/", wantCode: http.StatusOK},
		{name: "login page anonymous", path: "/native-login", wantCode: http.StatusOK},
		{
			name:      "login page authenticated",
			path:      "/native-login",
			principal: ptr(userPrincipal("alice", domain.RoleUser)),
			wantCode:  http.StatusFound,
			wantLoc:   security.HomePath,
		},
		{name: "user page anonymous", path: "/user", wantCode: http.StatusFound, wantLoc: security.LoginPath},
		{
			name:     "user page anonymous json",
			path:     "/user",
			accept:   "application/json",
			wantErr:  domain.ErrUnauthenticated,
			wantCode: http.StatusOK,
		},
		{
			name:      "admin page as user",
			path:      "/admins",
			principal: ptr(userPrincipal("alice", domain.RoleUser)),
			wantErr:   domain.ErrForbidden,
			wantCode:  http.StatusOK,
		},
		{
			name:      "admin page as admin",
			path:      "/admins",
			principal: ptr(userPrincipal("admin", domain.RoleAdmin)),
			wantCode:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, tt.path)
			if tt.accept != "" {
				c.Request().Header.Set("Accept", tt.accept)
			}
			if tt.principal != nil {
				withPrincipal(c, *tt.principal)
			}

			err := mw(okHandler)(c)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				require.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAuthorize_AsksCallerWhetherAuthenticated(t *testing.T) {
	var asked bool
	caller := contextCaller{authenticated: func(domain.Principal) bool {
		asked = true
		return false
	}}
	mw := Authorize(security.DefaultPolicy(), caller, zerolog.Nop())

	c, rec := newContext(http.MethodGet, "/user")
	withPrincipal(c, userPrincipal("alice", domain.RoleUser))

	require.NoError(t, mw(okHandler)(c))
	require.True(t, asked)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, security.LoginPath, rec.Header().Get("Location"))
}

func ptr[T any](v T) *T { return &v }

package security

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authsec/account-system/internal/core/domain"
)

var (
	anon  = domain.Anonymous()
	user  = domain.Principal{Name: "alice1", Roles: []string{domain.RoleUser}, Method: domain.AuthForm}
	admin = domain.Principal{Name: "admin", Roles: []string{domain.RoleAdmin}, Method: domain.AuthForm}
)

func TestDefaultPolicy_Matrix(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		path      string
		principal domain.Principal
		want      Decision
	}{
		{"/", anon, Allow},
		{"/home", anon, Allow},
		{"/register", anon, Allow},
		{"/logout", anon, Allow},
		{"/webjars/bootstrap/4.0/css/bootstrap.min.css", anon, Allow},
		{"/styles.css", anon, Allow},
		{"/jquery/jquery.min.js", anon, Allow},

		{"/native-login", anon, Allow},
		{"/native-login", user, RedirectHome},
		{"/native-login", admin, RedirectHome},

		{"/user", anon, RedirectLogin},
		{"/user", user, Allow},
		{"/user", admin, Allow},

		{"/all-accounts", anon, RedirectLogin},
		{"/all-accounts", user, Forbid},
		{"/all-accounts", admin, Allow},
		{"/make-admin-account", user, Forbid},
		{"/make-admin-account", admin, Allow},
		{"/delete-user-account", user, Forbid},
		{"/delete-user-account", admin, Allow},
		{"/add-admin", user, Forbid},
		{"/admins", admin, Allow},
		{"/users", admin, Allow},

		{"/something-else", anon, RedirectLogin},
		{"/something-else", user, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.principal.Name, func(t *testing.T) {
			require.Equal(t, tt.want, p.Evaluate(tt.path, tt.principal))
		})
	}
}

func TestPolicy_PathNormalization(t *testing.T) {
	p := DefaultPolicy()

	require.Equal(t, AdminOnly, p.RequirementFor("/all-accounts/"))
	require.Equal(t, AdminOnly, p.RequirementFor("/static/../all-accounts"))
	require.Equal(t, Public, p.RequirementFor(""))
	require.Equal(t, Public, p.RequirementFor("/webjars"))
	require.Equal(t, Authenticated, p.RequirementFor("/webjarsx"))
}

func TestPolicy_FirstMatchWins(t *testing.T) {
	p := NewPolicy(
		Rule{Pattern: "/admin/public", Requirement: Public},
		Rule{Pattern: "/admin/**", Requirement: AdminOnly},
	)

	require.Equal(t, Allow, p.Evaluate("/admin/public", anon))
	require.Equal(t, RedirectLogin, p.Evaluate("/admin/panel", anon))
	require.Equal(t, Forbid, p.Evaluate("/admin/panel", user))
}

func TestPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()

	require.Equal(t, RedirectHome, p.Decide("/native-login", true, false))
	require.Equal(t, RedirectLogin, p.Decide("/all-accounts", false, true))
	require.Equal(t, Forbid, p.Decide("/all-accounts", true, false))
	require.Equal(t, Allow, p.Decide("/all-accounts", true, true))
	require.Equal(t, Allow, p.Decide("/dashboard", true, false))
}

func TestRequirementAndDecisionStrings(t *testing.T) {
	require.Equal(t, "admin_only", AdminOnly.String())
	require.Equal(t, "authenticated", Authenticated.String())
	require.Equal(t, "forbid", Forbid.String())
	require.Equal(t, "allow", Allow.String())
}

package security

import "github.com/authsec/account-system/internal/core/domain"

// UserDetails is the view of an account the authentication gate needs.
type UserDetails struct {
	Username              string
	Password              string
	Authorities           []string
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool
	Enabled               bool
}

// NewUserDetails projects u.
func NewUserDetails(u *domain.User) UserDetails {
	return UserDetails{
		Username:              u.Username,
		Password:              u.PasswordHash,
		Authorities:           u.RoleNames(),
		AccountNonExpired:     u.AccountNonExpired,
		AccountNonLocked:      u.AccountNonLocked,
		CredentialsNonExpired: u.CredentialsNonExpired,
		Enabled:               u.Enabled,
	}
}

// Principal returns the principal established for these details.
func (d UserDetails) Principal(method domain.AuthMethod) domain.Principal {
	roles := make([]string, len(d.Authorities))
	copy(roles, d.Authorities)
	return domain.Principal{Name: d.Username, Roles: roles, Method: method}
}

package domain

import (
	"strings"
	"time"
)

// User is an account record. It owns its roles and carries the four account
// status flags consulted at login.
type User struct {
	ID                    string    `json:"id"`
	Username              string    `json:"username"`
	PasswordHash          string    `json:"-"`
	Roles                 []Role    `json:"roles"`
	AccountNonExpired     bool      `json:"account_non_expired"`
	AccountNonLocked      bool      `json:"account_non_locked"`
	CredentialsNonExpired bool      `json:"credentials_non_expired"`
	Enabled               bool      `json:"enabled"`
	CreatedAt             time.Time `json:"created_at"`
}

// UserParams enumerates every field needed to construct a User.
type UserParams struct {
	Username              string
	PasswordHash          string
	Roles                 []Role
	CreatedAt             time.Time
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool
	Enabled               bool
}

// NewUser builds a User from p. The role slice is copied.
func NewUser(p UserParams) *User {
	roles := make([]Role, len(p.Roles))
	copy(roles, p.Roles)
	return &User{
		Username:              p.Username,
		PasswordHash:          p.PasswordHash,
		Roles:                 roles,
		CreatedAt:             p.CreatedAt,
		AccountNonExpired:     p.AccountNonExpired,
		AccountNonLocked:      p.AccountNonLocked,
		CredentialsNonExpired: p.CredentialsNonExpired,
		Enabled:               p.Enabled,
	}
}

// NewActiveUser builds a fully usable account created at now.
func NewActiveUser(username, passwordHash string, roles []Role, now time.Time) *User {
	return NewUser(UserParams{
		Username:              username,
		PasswordHash:          passwordHash,
		Roles:                 roles,
		CreatedAt:             now,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
		Enabled:               true,
	})
}

// HasRole reports whether the user holds a role named name.
func (u *User) HasRole(name string) bool {
	want := Role{Name: name}
	for _, r := range u.Roles {
		if r.Equal(want) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds ROLE_ADMIN.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleNames returns the names of the user's roles in order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// CanAuthenticate reports whether every status flag allows a login.
func (u *User) CanAuthenticate() bool {
	return u.AccountNonExpired && u.AccountNonLocked && u.CredentialsNonExpired && u.Enabled
}

// SameUsername compares usernames the way the store's uniqueness rule does.
func SameUsername(a, b string) bool {
	return strings.EqualFold(a, b)
}

// NormalizeUsername returns the key under which a username is unique.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

package service

import (
	"time"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// RoleConverter maps roles to and from RoleForm.
type RoleConverter struct{}

func (RoleConverter) ToForm(r domain.Role) ports.RoleForm {
	return ports.RoleForm{Name: r.Name}
}

func (RoleConverter) ToModel(f ports.RoleForm) domain.Role {
	return domain.NewRole(f.Name)
}

// UserConverter maps accounts to and from UserForm.
//
// ToModel builds a brand-new account: every status flag is set and the
// creation time is stamped from the clock. It must not be used to update a
// stored account.
type UserConverter struct {
	roles RoleConverter
	now   func() time.Time
}

// NewUserConverter returns a UserConverter. A nil clock defaults to UTC now.
func NewUserConverter(now func() time.Time) *UserConverter {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &UserConverter{now: now}
}

// ToForm never copies the credential hash.
func (c *UserConverter) ToForm(u *domain.User) ports.UserForm {
	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, c.roles.ToForm(r).Name)
	}
	return ports.UserForm{
		Username:  u.Username,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

// ToModel treats f.Password as already hashed.
func (c *UserConverter) ToModel(f ports.UserForm) *domain.User {
	roles := make([]domain.Role, 0, len(f.Roles))
	for _, name := range f.Roles {
		roles = append(roles, c.roles.ToModel(ports.RoleForm{Name: name}))
	}
	return domain.NewActiveUser(f.Username, f.Password, roles, c.now())
}

var (
	_ ports.Converter[ports.RoleForm, domain.Role]  = RoleConverter{}
	_ ports.Converter[ports.UserForm, *domain.User] = (*UserConverter)(nil)
)

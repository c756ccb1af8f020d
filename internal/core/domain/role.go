package domain

import "strings"

// Canonical role names.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Role is a named authority. Two roles are the same role when their names
// match case-insensitively; the store identifier plays no part in identity.
type Role struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

// NewRole returns an unsaved role carrying the canonical spelling of name.
func NewRole(name string) Role {
	return Role{Name: CanonicalRoleName(name)}
}

// Equal reports whether r and other denote the same authority.
func (r Role) Equal(other Role) bool {
	return strings.EqualFold(r.Name, other.Name)
}

// Key is the value used to index roles in maps and unique constraints.
func (r Role) Key() string {
	return strings.ToLower(r.Name)
}

// CanonicalRoleName trims and upper-cases a role name.
func CanonicalRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// IsKnownRole reports whether name refers to one of the two roles this system
// grants.
func IsKnownRole(name string) bool {
	switch CanonicalRoleName(name) {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

package ports

import (
	"context"

	"github.com/authsec/account-system/internal/core/domain"
)

// RoleRepository defines persistence operations for roles. Names are unique
// case-insensitively.
type RoleRepository interface {
	// FindByName returns domain.ErrRoleNotFound when no role matches.
	FindByName(ctx context.Context, name string) (*domain.Role, error)
	// Create inserts role and assigns its ID. Inserting a name that already
	// exists is not an error; role.ID is set to the existing record's ID.
	Create(ctx context.Context, role *domain.Role) error
}

package ports

import (
	"context"

	"github.com/authsec/account-system/internal/core/domain"
)

// UserRepository defines persistence operations for accounts. Username
// lookups are case-insensitive.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no account matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create inserts a new account and assigns its ID. A username collision
	// is reported as domain.ErrUserAlreadyExists.
	Create(ctx context.Context, user *domain.User) error
	// Update replaces the stored account identified by user.ID.
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the account identified by user.ID. Returns
	// domain.ErrUserNotFound if nothing was removed.
	Delete(ctx context.Context, user *domain.User) error
	// FindAll returns every account. Zero accounts is an empty, non-nil slice.
	FindAll(ctx context.Context) ([]*domain.User, error)
}

package ports

import (
	"context"

	"github.com/authsec/account-system/internal/core/domain"
)

// SessionStore keeps server-side login sessions keyed by an opaque ID.
type SessionStore interface {
	Create(ctx context.Context, principal domain.Principal) (string, error)
	// Get returns domain.ErrUnauthenticated when the session is unknown or expired.
	Get(ctx context.Context, id string) (domain.Principal, error)
	Delete(ctx context.Context, id string) error
}

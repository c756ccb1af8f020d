package ports

import (
	"context"

	"github.com/authsec/account-system/internal/core/domain"
)

// ExternalIdentity is what a third-party identity provider tells us about
// the person who just signed in.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Username string
	Email    string
}

// Authenticator establishes principals for the login paths.
type Authenticator interface {
	// Authenticate checks a username/password pair.
	Authenticate(ctx context.Context, username, password string) (*domain.User, domain.Principal, error)
	// Resume re-establishes a principal for a username vouched for by a
	// remember-me token, re-checking the account status flags.
	Resume(ctx context.Context, username string) (*domain.User, domain.Principal, error)
	// External maps an identity provider login to a principal.
	External(ctx context.Context, id ExternalIdentity) (domain.Principal, error)
}

package security

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// UserLoader is the slice of the account service the gate depends on.
type UserLoader interface {
	LoadByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Authenticator verifies credentials against stored accounts.
type Authenticator struct {
	users  UserLoader
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewAuthenticator(users UserLoader, hasher ports.PasswordHasher, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		users:  users,
		hasher: hasher,
		log:    log.With().Str("component", "authenticator").Logger(),
	}
}

var _ ports.Authenticator = (*Authenticator)(nil)

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials; status flags are only
// reported once the password has matched.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.User, domain.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Principal{}, domain.ErrInvalidCredentials
	}

	user, err := a.users.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.log.Debug().Str("username", username).Msg("login for unknown user")
			return nil, domain.Principal{}, domain.ErrInvalidCredentials
		}
		return nil, domain.Principal{}, err
	}

	details := NewUserDetails(user)
	if err := a.hasher.Verify(details.Password, password); err != nil {
		a.log.Debug().Str("username", username).Msg("invalid password")
		return nil, domain.Principal{}, domain.ErrInvalidCredentials
	}
	if !user.CanAuthenticate() {
		a.log.Info().Str("username", username).Msg("login refused: account not usable")
		return nil, domain.Principal{}, domain.ErrAccountDisabled
	}

	return user, details.Principal(domain.AuthForm), nil
}

// Resume reloads the account behind a remember-me token.
func (a *Authenticator) Resume(ctx context.Context, username string) (*domain.User, domain.Principal, error) {
	user, err := a.users.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Principal{}, domain.ErrUnauthenticated
		}
		return nil, domain.Principal{}, err
	}

	if !user.CanAuthenticate() {
		return nil, domain.Principal{}, domain.ErrAccountDisabled
	}
	return user, NewUserDetails(user).Principal(domain.AuthRememberMe), nil
}

// External grants an identity-provider login the ordinary user authority.
// Provider logins are never linked to local accounts, so a matching local
// username does not inherit that account's roles.
func (a *Authenticator) External(_ context.Context, id ports.ExternalIdentity) (domain.Principal, error) {
	name := strings.TrimSpace(id.Username)
	if name == "" {
		name = strings.TrimSpace(id.Subject)
	}
	if name == "" {
		return domain.Principal{}, domain.ErrInvalidCredentials
	}
	return domain.Principal{
		Name:   name,
		Roles:  []string{domain.RoleUser},
		Method: domain.AuthOAuth2,
	}, nil
}

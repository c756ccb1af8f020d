package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// AccountService implements registration, promotion, deletion and listing of
// accounts. It holds no locks: username races are settled by the store's
// unique index.
type AccountService struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	hasher    ports.PasswordHasher
	converter ports.Converter[ports.UserForm, *domain.User]
	log       zerolog.Logger
}

// NewAccountService returns an AccountService. A nil converter defaults to a
// UserConverter on the wall clock.
func NewAccountService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	converter ports.Converter[ports.UserForm, *domain.User],
	log zerolog.Logger,
) *AccountService {
	if converter == nil {
		converter = NewUserConverter(nil)
	}
	return &AccountService{
		users:     users,
		roles:     roles,
		hasher:    hasher,
		converter: converter,
		log:       log.With().Str("service", "account").Logger(),
	}
}

var _ ports.AccountService = (*AccountService)(nil)

// LoadByUsername returns the account with its roles, or domain.ErrUserNotFound.
func (s *AccountService) LoadByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrUserNotFound
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// ResolveRole looks a role up by name and creates it when it does not exist
// yet.
func (s *AccountService) ResolveRole(ctx context.Context, name string) (domain.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err == nil && role != nil {
		return *role, nil
	}
	if err != nil && !errors.Is(err, domain.ErrRoleNotFound) {
		return domain.Role{}, fmt.Errorf("find role: %w", err)
	}

	created := domain.NewRole(name)
	if err := s.roles.Create(ctx, &created); err != nil {
		return domain.Role{}, fmt.Errorf("create role: %w", err)
	}
	s.log.Info().Str("role", created.Name).Msg("role created")
	return created, nil
}

// Register creates a new account from form. Only the first role named in
// the form is used.
func (s *AccountService) Register(ctx context.Context, form ports.UserForm) error {
	username := strings.TrimSpace(form.Username)
	if username == "" || form.Password == "" {
		return domain.ErrNullParameter
	}
	if len(form.Roles) == 0 || !domain.IsKnownRole(form.Roles[0]) {
		return domain.ErrRoleNotFound
	}

	role, err := s.ResolveRole(ctx, form.Roles[0])
	if err != nil {
		s.log.Error().Err(err).Str("role", form.Roles[0]).Msg("failed to resolve role")
		return domain.ErrRoleNotFound
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return fmt.Errorf("register: hash password: %w", err)
	}

	user := s.converter.ToModel(ports.UserForm{Username: username, Password: hash})
	user.Roles = []domain.Role{role}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			s.log.Info().Str("username", username).Msg("registration rejected: username taken")
			return domain.ErrUserAlreadyExists
		}
		s.log.Error().Err(err).Str("username", username).Msg("failed to create user")
		return fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", role.Name).Msg("account registered")
	return nil
}

// ListAll returns every account.
func (s *AccountService) ListAll(ctx context.Context) ([]ports.UserForm, error) {
	return s.list(ctx, func(*domain.User) bool { return true })
}

// ListAdmins returns the accounts holding ROLE_ADMIN.
func (s *AccountService) ListAdmins(ctx context.Context) ([]ports.UserForm, error) {
	return s.list(ctx, (*domain.User).IsAdmin)
}

// ListNonAdmins returns the accounts not holding ROLE_ADMIN.
func (s *AccountService) ListNonAdmins(ctx context.Context) ([]ports.UserForm, error) {
	return s.list(ctx, func(u *domain.User) bool { return !u.IsAdmin() })
}

// ListExcludingCurrentUser returns every account except the caller's own.
// Usernames are compared case-insensitively.
func (s *AccountService) ListExcludingCurrentUser(ctx context.Context) ([]ports.UserForm, error) {
	current := s.CurrentPrincipal(ctx).Name
	return s.list(ctx, func(u *domain.User) bool {
		return !domain.SameUsername(u.Username, current)
	})
}

// list distinguishes a failed fetch (domain.ErrEmptyResultSet) from a fetch
// that legitimately matched nothing (empty slice).
func (s *AccountService) list(ctx context.Context, keep func(*domain.User) bool) ([]ports.UserForm, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list accounts")
		return nil, domain.ErrEmptyResultSet
	}
	if users == nil {
		return nil, domain.ErrEmptyResultSet
	}

	forms := make([]ports.UserForm, 0, len(users))
	for _, u := range users {
		if u == nil || !keep(u) {
			continue
		}
		forms = append(forms, s.converter.ToForm(u))
	}
	return forms, nil
}

// PromoteToAdmin replaces the account's whole role set with {ROLE_ADMIN}.
// Promoting an account that is already an administrator is rejected.
func (s *AccountService) PromoteToAdmin(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return domain.ErrNullParameter
	}

	user, err := s.LoadByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidAccountState
		}
		return fmt.Errorf("promote: %w", err)
	}
	if len(user.Roles) == 0 || user.IsAdmin() {
		return domain.ErrInvalidAccountState
	}

	admin, err := s.ResolveRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to resolve admin role")
		return domain.ErrEmptyResultSet
	}

	previous := user.RoleNames()
	user.Roles = []domain.Role{admin}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNoSuchUser
		}
		return fmt.Errorf("promote: %w", err)
	}

	s.log.Info().
		Str("username", user.Username).
		Strs("previous_roles", previous).
		Str("promoted_by", s.CurrentPrincipal(ctx).Name).
		Msg("account promoted to admin")
	return nil
}

// DeleteAccount removes the named account. Every lookup or removal failure
// surfaces as domain.ErrNoSuchUser.
func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	user, err := s.LoadByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("username", username).Msg("failed to load account for deletion")
		}
		return domain.ErrNoSuchUser
	}

	if err := s.users.Delete(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("username", username).Msg("failed to delete account")
		}
		return domain.ErrNoSuchUser
	}

	s.log.Info().
		Str("username", user.Username).
		Str("deleted_by", s.CurrentPrincipal(ctx).Name).
		Msg("account deleted")
	return nil
}

// IsAuthenticated reports whether the request runs as a named principal.
func (s *AccountService) IsAuthenticated(ctx context.Context) bool {
	return s.CurrentPrincipal(ctx).Authenticated()
}

// CurrentPrincipal returns the principal attached to ctx.
func (s *AccountService) CurrentPrincipal(ctx context.Context) domain.Principal {
	return domain.PrincipalFrom(ctx)
}

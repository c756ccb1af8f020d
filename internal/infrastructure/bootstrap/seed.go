// Package bootstrap prepares the account store before the first request is
// served.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/authsec/account-system/internal/core/domain"
	"github.com/authsec/account-system/internal/core/ports"
)

// AdminAccount is the administrator created on first start.
type AdminAccount struct {
	Username string
	Password string
}

// Seeder ensures the canonical roles and the default administrator exist.
// Running it again against a seeded store changes nothing.
type Seeder struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewSeeder(users ports.UserRepository, roles ports.RoleRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:  users,
		roles:  roles,
		hasher: hasher,
		log:    log.With().Str("component", "bootstrap").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds the store.
func (s *Seeder) Run(ctx context.Context, admin AdminAccount) error {
	if admin.Username == "" || admin.Password == "" {
		return fmt.Errorf("bootstrap: %w: admin username and password", domain.ErrNullParameter)
	}

	var adminRole domain.Role
	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		role, err := s.ensureRole(ctx, name)
		if err != nil {
			return err
		}
		if name == domain.RoleAdmin {
			adminRole = role
		}
	}

	_, err := s.users.FindByUsername(ctx, admin.Username)
	if err == nil {
		s.log.Debug().Str("username", admin.Username).Msg("administrator already present")
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("bootstrap: find admin: %w", err)
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap: hash admin password: %w", err)
	}

	user := domain.NewActiveUser(admin.Username, hash, []domain.Role{adminRole}, s.now())
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil
		}
		return fmt.Errorf("bootstrap: create admin: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("default administrator created")
	return nil
}

func (s *Seeder) ensureRole(ctx context.Context, name string) (domain.Role, error) {
	role, err := s.roles.FindByName(ctx, name)
	if err == nil {
		return *role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return domain.Role{}, fmt.Errorf("bootstrap: find role %s: %w", name, err)
	}

	created := domain.NewRole(name)
	if err := s.roles.Create(ctx, &created); err != nil {
		return domain.Role{}, fmt.Errorf("bootstrap: create role %s: %w", name, err)
	}
	s.log.Info().Str("role", created.Name).Msg("role seeded")
	return created, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/authsec/account-system/internal/core/domain"
)

type stubUserRepo struct {
	users     map[string]*domain.User
	nextID    int
	findAll   func() ([]*domain.User, error)
	deleteErr error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[domain.NormalizeUsername(username)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	key := domain.NormalizeUsername(user.Username)
	if _, exists := r.users[key]; exists {
		return domain.ErrUserAlreadyExists
	}
	r.nextID++
	user.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[key] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	key := domain.NormalizeUsername(user.Username)
	if _, exists := r.users[key]; !exists {
		return domain.ErrUserNotFound
	}
	r.users[key] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, user *domain.User) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	key := domain.NormalizeUsername(user.Username)
	if _, exists := r.users[key]; !exists {
		return domain.ErrUserNotFound
	}
	delete(r.users, key)
	return nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	if r.findAll != nil {
		return r.findAll()
	}
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

type stubRoleRepo struct {
	roles     map[string]domain.Role
	created   []string
	createErr error
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{roles: make(map[string]domain.Role)}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	role, ok := r.roles[domain.NewRole(name).Key()]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) error {
	if r.createErr != nil {
		return r.createErr
	}
	role.ID = "r-" + role.Key()
	r.roles[role.Key()] = *role
	r.created = append(r.created, role.Name)
	return nil
}

type stubHasher struct {
	err error
}

func (h stubHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h stubHasher) Verify(hash, plaintext string) error {
	if hash != "hashed:"+plaintext {
		return domain.ErrInvalidCredentials
	}
	return nil
}

var errStoreDown = errors.New("store unavailable")

package ports

import (
	"context"
	"time"

	"github.com/authsec/account-system/internal/core/domain"
)

// UserForm is the transport-facing shape of an account.
type UserForm struct {
	Username  string    `json:"username" form:"username" validate:"required,min=5"`
	Password  string    `json:"-" form:"password" validate:"required,min=5"`
	Roles     []string  `json:"roles" form:"roles"`
	CreatedAt time.Time `json:"created_at,omitempty" form:"-"`
}

// RoleForm is the transport-facing shape of a role.
type RoleForm struct {
	Name string `json:"name" form:"name"`
}

// Converter maps between a form F and a domain model M.
type Converter[F, M any] interface {
	ToForm(model M) F
	ToModel(form F) M
}

// AccountService defines the account lifecycle use cases.
type AccountService interface {
	LoadByUsername(ctx context.Context, username string) (*domain.User, error)
	Register(ctx context.Context, form UserForm) error
	ListAll(ctx context.Context) ([]UserForm, error)
	ListAdmins(ctx context.Context) ([]UserForm, error)
	ListNonAdmins(ctx context.Context) ([]UserForm, error)
	ListExcludingCurrentUser(ctx context.Context) ([]UserForm, error)
	PromoteToAdmin(ctx context.Context, username string) error
	DeleteAccount(ctx context.Context, username string) error
	IsAuthenticated(ctx context.Context) bool
	CurrentPrincipal(ctx context.Context) domain.Principal
}

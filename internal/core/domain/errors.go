package domain

import "errors"

// Account errors.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrNoSuchUser          = errors.New("no such user")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrRoleNotFound        = errors.New("no such role")
	ErrInvalidAccountState = errors.New("invalid account state")
	ErrEmptyResultSet      = errors.New("empty result set")
	ErrNullParameter       = errors.New("required parameter is missing")
)

// Authentication and authorization errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled, locked or expired")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
)

package handler

import (
	"errors"
	"net/http"

	"github.com/authsec/account-system/internal/core/domain"
)

// User-facing messages rendered for each error kind.
const (
	MsgNoSuchRole         = "The Role Doesn't Exist! The two possible roles for this system are: USER & ADMIN."
	MsgNoSuchUser         = "The User Doesn't Exist! Maybe change the search parameters."
	MsgUserAlreadyExists  = "The User Already Exists! Try another username."
	MsgInvalidEntityState = "The entity cannot be processed, because its state is invalid!" +
		"The Entity cannot be null and cannot have'ROLE_ADMIN' as an authority."
	MsgNullParameter      = "The received parameter has a null value! Method requires a non-null value for correct behavior."
	MsgNullResultList     = "No record was found for the specified query! The table may not contain any entries."
	MsgInvalidCredentials = "Invalid username or password."
	MsgAccountDisabled    = "The account is disabled, locked or expired."
	MsgUnauthenticated    = "Full authentication is required to access this resource."
	MsgForbidden          = "Access is denied."
)

type errorKind struct {
	target error
	status int
	msg    string
}

var errorKinds = []errorKind{
	{domain.ErrRoleNotFound, http.StatusBadRequest, MsgNoSuchRole},
	{domain.ErrNoSuchUser, http.StatusNotFound, MsgNoSuchUser},
	{domain.ErrUserNotFound, http.StatusNotFound, MsgNoSuchUser},
	{domain.ErrUserAlreadyExists, http.StatusConflict, MsgUserAlreadyExists},
	{domain.ErrInvalidAccountState, http.StatusUnprocessableEntity, MsgInvalidEntityState},
	{domain.ErrNullParameter, http.StatusBadRequest, MsgNullParameter},
	{domain.ErrEmptyResultSet, http.StatusNotFound, MsgNullResultList},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, MsgInvalidCredentials},
	{domain.ErrAccountDisabled, http.StatusUnauthorized, MsgAccountDisabled},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, MsgUnauthenticated},
	{domain.ErrForbidden, http.StatusForbidden, MsgForbidden},
}

// Describe maps a domain error to its HTTP status and user-facing message.
// ok is false for errors outside the domain taxonomy.
func Describe(err error) (status int, msg string, ok bool) {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status, k.msg, true
		}
	}
	return http.StatusInternalServerError, "", false
}

// errorKindLabel is the metrics label for err.
func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrRoleNotFound):
		return "role_not_found"
	case errors.Is(err, domain.ErrNoSuchUser), errors.Is(err, domain.ErrUserNotFound):
		return "no_such_user"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return "user_already_exists"
	case errors.Is(err, domain.ErrInvalidAccountState):
		return "invalid_account_state"
	case errors.Is(err, domain.ErrNullParameter):
		return "null_parameter"
	case errors.Is(err, domain.ErrEmptyResultSet):
		return "empty_result_set"
	default:
		return "internal"
	}
}

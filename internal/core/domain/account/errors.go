package account

import "errors"

var (
	// ErrDuplicateAccount is returned when the login ID or email is already
	// taken by a non-deleted account.
	ErrDuplicateAccount = errors.New("login ID or email already in use")

	// ErrAccountNotFound is returned when no non-deleted account matches.
	ErrAccountNotFound = errors.New("account not found")
)

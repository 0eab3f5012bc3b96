package repositories

import "errors"

// Error taxonomy shared by the repositories and the store facade. Callers
// branch with errors.Is; anything not matching one of these sentinels is a
// storage error propagated largely unchanged.
var (
	// ErrNotFound: the requested row does not exist, or a delete/update
	// affected zero rows. Never retried automatically.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail: unique-constraint violation on users.email,
	// translated from the raw driver error.
	ErrDuplicateEmail = errors.New("a user with the provided email already exists")

	// ErrValidation: a required argument is missing. Raised before any I/O.
	ErrValidation = errors.New("missing required argument")

	// ErrInvalidCredentials: password verification failed.
	ErrInvalidCredentials = errors.New("incorrect password")
)

package store

import "go-logstore/internal/repositories"

// Re-exported error sentinels so callers of the facade do not need to
// import the repositories package.
var (
	ErrNotFound           = repositories.ErrNotFound
	ErrDuplicateEmail     = repositories.ErrDuplicateEmail
	ErrValidation         = repositories.ErrValidation
	ErrInvalidCredentials = repositories.ErrInvalidCredentials
)

package ports

import "errors"

// Standard application-level errors for the adapter layer.
// Adapters wrap underlying infrastructure errors with these sentinels so
// callers can branch with errors.Is. Engine-level sentinels live in
// internal/domain.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Database errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrDeleteFailed = errors.New("database delete failed")
)

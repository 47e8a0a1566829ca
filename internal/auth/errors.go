package auth

import "errors"

// Failure taxonomy for account operations. Handlers map these onto HTTP
// status codes; anything else is treated as a store/transport failure.
var (
	ErrDuplicateUser     = errors.New("username or email already exists")
	ErrNotFound          = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid password")
	ErrInvalidKey        = errors.New("invalid API key")
	ErrEmailInUse        = errors.New("email already in use by another account")
	ErrUnauthorized      = errors.New("authentication required")
)

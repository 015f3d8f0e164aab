package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when a correct password belongs to a non-admin user.
	ErrForbidden = errors.New("access denied")
	// ErrUnauthorized is returned for a missing, malformed, forged or expired token.
	ErrUnauthorized = errors.New("unauthorized")
)

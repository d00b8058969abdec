package domain

import "errors"

// Sentinel errors. Each maps to exactly one HTTP status in the API error
// handler; everything else collapses to 500 there.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrUserExists         = errors.New("username or email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrMissingSecret      = errors.New("jwt secret is not configured")
	ErrForbidden          = errors.New("access forbidden")
)

package auth

import "errors"

// Verification errors. Handlers map ErrNotConfigured to a server error and
// every other one to 401.
var (
	ErrMissingHeader = errors.New("missing Authorization header")
	ErrMissingToken  = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrNotConfigured = errors.New("token verification is not configured")
)

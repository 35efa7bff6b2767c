package errorz

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates a request without a usable identity,
	// typically a missing, malformed or expired bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates a valid identity with insufficient privilege,
	// or a deactivated account.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOrExpired indicates a password reset token that is unknown,
	// already consumed or past its expiry. The cases are deliberately not
	// distinguished.
	ErrInvalidOrExpired = errors.New("invalid or expired token")
)

package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateIdentity occurs when an email or singleton role is already taken.
	ErrDuplicateIdentity = errors.New("identity already exists")
	// ErrForbiddenRole occurs when a request attempts to grant a role it may not.
	ErrForbiddenRole = errors.New("role not assignable")
	// ErrTokenInvalid occurs when a token signature or shape does not verify.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired occurs when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrForbidden indicates a policy denial for an identified actor.
	ErrForbidden = errors.New("forbidden")
)

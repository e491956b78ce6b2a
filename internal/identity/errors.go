package identity

import "errors"

var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("identity: account not found")

	// ErrEmailTaken is returned when a signup reuses a registered email.
	ErrEmailTaken = errors.New("identity: email already registered")

	// ErrInvalidCredentials is returned when email/password verification fails.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")

	// ErrInvalidToken is returned for malformed, expired, or revoked tokens.
	ErrInvalidToken = errors.New("identity: invalid token")

	// ErrInvalidEmail is returned when the email fails basic shape checks.
	ErrInvalidEmail = errors.New("identity: invalid email address")

	// ErrWeakPassword is returned when the password is below the minimum length.
	ErrWeakPassword = errors.New("identity: password must be at least 6 characters")
)

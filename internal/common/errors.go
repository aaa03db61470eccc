// Package common defines shared constants and sentinel errors used across
// the client and server layers of the auth system. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("username or email already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Login failures. These are ordinary return values, not process faults:
	// invalid credentials are retryable until the attempt counter locks the
	// account, the other two are terminal until an external reset.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
	ErrAccountDeactivated = errors.New("account is deactivated")

	// Registration validation.
	ErrPasswordTooShort = errors.New("password is too short")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

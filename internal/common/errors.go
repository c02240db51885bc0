// Package common defines shared constants and sentinel errors used across
// client and server layers of TripKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors (rejected before any network or DB call).
	ErrorValidation         = errors.New("validation error")
	ErrorEmailAlreadyExists = errors.New("email already registered")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrReauthRequired marks destructive account operations that need a
	// fresh credential. Surfaced distinctly so callers can run a
	// re-authentication flow instead of a generic failure message.
	ErrReauthRequired = errors.New("recent authentication required")

	// ErrVersionConflict signals a concurrent document update.
	ErrVersionConflict = errors.New("version conflict")
)

// Package common defines shared constants and sentinel errors used across
// client and server layers of Fe. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorStorage          = errors.New("storage error")
	ErrorValidation       = errors.New("validation error")
	ErrorReceiverNotFound = errors.New("receiver not found")

	// Authentication and authorization errors. ErrorUnauthenticated covers
	// missing credentials and unknown users, ErrorForbidden a signature that
	// does not verify.
	ErrorUnauthenticated = errors.New("unauthenticated")
	ErrorForbidden       = errors.New("forbidden")
	ErrorRateLimited     = errors.New("rate limited")

	// Admin token errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// Package common defines shared constants and sentinel errors used across
// the health tracker server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (malformed input, phone number format, ranges).
	ErrorValidation = errors.New("validation error")

	// Errors returned by third-party providers (call OTP, object storage).
	ErrorUpstream = errors.New("upstream error")
)

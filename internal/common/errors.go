// Package common defines shared sentinel errors used across the server
// layers of Libria. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Request-level errors, determined entirely from local data.
	ErrorInvalidRequest  = errors.New("invalid request")
	ErrorUnauthenticated = errors.New("unauthenticated")

	// Authorization errors.
	ErrorNotFound  = errors.New("not found")
	ErrorForbidden = errors.New("forbidden")

	// Storage provider errors (transport/credentials/permissions). Full detail
	// is logged internally; callers only see the kind.
	ErrorProvider = errors.New("storage provider error")

	// Generic flow control.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

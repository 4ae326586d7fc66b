// Package common defines shared constants and sentinel errors used across
// the blog-api layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal  = errors.New("internal error")
	ErrForbidden = errors.New("forbidden")

	// Registration / credential errors. Email and username collisions are
	// deliberately not distinguished, and unknown-email and wrong-password
	// are deliberately merged, to prevent account enumeration.
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateIdentity  = errors.New("identity already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token). Decode failures collapse
	// signature, structure, and expiry into ErrInvalidToken.
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("not authenticated")

	// Token lifecycle errors. A refresh token that verifies but whose jti
	// is no longer registered is revoked, not merely invalid.
	ErrTokenRevoked = errors.New("token revoked")

	// Internal listing-cache signal, never surfaced to callers.
	ErrNotCacheable = errors.New("not cacheable")
)

// Package tokenstore tracks which refresh-token identifiers (jti) are
// currently valid. A refresh token is usable only while its jti is present
// here; revocation removes the entry and is the sole pre-expiry
// invalidation mechanism.
package tokenstore

import "context"

// Store is the refresh-token registry contract.
type Store interface {
	// Store registers jti as active for userID. The entry expires with the
	// token's own cryptographic expiry (one shared configuration value).
	Store(ctx context.Context, jti string, userID int64) error

	// IsActive reports whether a non-expired record for jti exists.
	IsActive(ctx context.Context, jti string) (bool, error)

	// Revoke removes the record. Revoking an unknown or already-revoked
	// jti is a no-op success.
	Revoke(ctx context.Context, jti string) error
}

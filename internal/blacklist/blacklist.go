// Package blacklist records session tokens that must be rejected even though
// they are still cryptographically valid.  A signed token stays verifiable
// until its embedded expiry, so logout is only effective if every protected
// request also consults this revocation list.  Entries need to live no longer
// than the token's natural lifetime; both implementations prune on that basis.
package blacklist

import (
	"context"
	"time"
)

// Store is the revocation list consulted by the auth middleware.
type Store interface {
	// Revoke marks a token as revoked for at least ttl.  Revoking an
	// already-revoked token is a no-op.
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	// IsRevoked reports whether the token has been revoked.
	IsRevoked(ctx context.Context, token string) (bool, error)
}

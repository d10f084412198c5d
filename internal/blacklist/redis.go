package blacklist

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/contact-book/internal/utils"
)

const keyPrefix = "blacklist:"

// RedisStore keeps revoked tokens in Redis.  Each entry is stored under the
// SHA-256 digest of the token with a TTL equal to the token's remaining
// lifetime, so Redis expires entries exactly when the token would have
// expired anyway and the list never grows unbounded.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an established Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Revoke stores the token digest with the given TTL.  A non-positive TTL
// means the token has already expired naturally and nothing needs storing.
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, keyPrefix+utils.HashToken(token), 1, ttl).Err()
}

// IsRevoked checks for the token digest.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+utils.HashToken(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix is the Redis key prefix for revoked token digests.
const revokedKeyPrefix = "revoked_token:"

// RevocationList records logged-out tokens until they would have expired
// anyway. Tokens are stored as SHA-256 digests, never in the clear.
type RevocationList interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// redisRevocationList implements RevocationList with one expiring Redis key
// per revoked token.
type redisRevocationList struct {
	redis *redis.Client
	now   func() time.Time
}

// NewRevocationList creates a Redis-backed revocation list.
func NewRevocationList(rdb *redis.Client) RevocationList {
	return &redisRevocationList{redis: rdb, now: time.Now}
}

// Revoke marks token revoked until expiresAt. Already-expired tokens are
// skipped since the verifier rejects them on its own.
func (r *redisRevocationList) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.redis.Set(ctx, revocationKey(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("storing revoked token: %w", err)
	}
	return nil
}

// IsRevoked reports whether token was revoked and has not yet aged out.
func (r *redisRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.redis.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("checking revoked token: %w", err)
	}
	return n > 0, nil
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}

// AngelaMos | 2026
// revocation.go

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pierkoo/flasktaskr/internal/core"
)

// RevocationStore remembers session ids that were logged out before their
// cookie expired.
type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type redisRevocations struct {
	client *redis.Client
}

func NewRedisRevocations(client *redis.Client) RevocationStore {
	return &redisRevocations{client: client}
}

func (r *redisRevocations) Revoke(
	ctx context.Context,
	sessionID string,
	ttl time.Duration,
) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, core.RevokedSessionKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	return nil
}

func (r *redisRevocations) IsRevoked(
	ctx context.Context,
	sessionID string,
) (bool, error) {
	exists, err := r.client.Exists(ctx, core.RevokedSessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	return exists > 0, nil
}

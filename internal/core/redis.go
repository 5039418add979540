// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pierkoo/flasktaskr/internal/config"
)

// keyPrefix namespaces every key this application writes to Redis.
const keyPrefix = "taskr"

// Keyspace groups the keys of one concern under keyPrefix.
type Keyspace string

const (
	KeyspaceSession   Keyspace = "session"
	KeyspaceRateLimit Keyspace = "ratelimit"
)

// Key builds "taskr:<keyspace>:<parts...>".
func (k Keyspace) Key(parts ...string) string {
	return keyPrefix + ":" + string(k) + ":" + strings.Join(parts, ":")
}

// RevokedSessionKey stores only a digest of the session id, so a Redis dump
// never yields a replayable cookie id.
func RevokedSessionKey(sessionID string) string {
	return KeyspaceSession.Key("revoked", HashToken(sessionID))
}

// Redis holds the client shared by session revocation and rate limiting.
type Redis struct {
	Client *redis.Client
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	r := &Redis{Client: redis.NewClient(opts)}
	if err := waitFor(ctx, "redis", cfg.ConnectAttempts, r.Ping); err != nil {
		_ = r.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}

	return r, nil
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierkoo/flasktaskr/internal/config"
)

func TestKeyspaceKey(t *testing.T) {
	assert.Equal(t,
		"taskr:ratelimit:ip:10.0.0.1:endpoint:login",
		KeyspaceRateLimit.Key("ip", "10.0.0.1", "endpoint", "login"),
	)
	assert.Equal(t, "taskr:session:abc", KeyspaceSession.Key("abc"))
}

func TestRevokedSessionKeyHidesSessionID(t *testing.T) {
	key := RevokedSessionKey("session-123")

	assert.True(t, strings.HasPrefix(key, "taskr:session:revoked:"))
	assert.NotContains(t, key, "session-123")
	assert.Equal(t, key, RevokedSessionKey("session-123"))
}

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), config.RedisConfig{
		URL:             "redis://" + mr.Addr(),
		PoolSize:        2,
		ConnectAttempts: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	require.NoError(t, r.Ping(context.Background()))
}

func TestNewRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{
		URL:             "redis://" + addr,
		ConnectAttempts: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis after 1 attempts")
}

func TestWaitForRetriesUntilReady(t *testing.T) {
	calls := 0
	err := waitFor(context.Background(), "db", 3, func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWaitForStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := waitFor(ctx, "db", 5, func(context.Context) error {
		calls++
		return errors.New("down")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

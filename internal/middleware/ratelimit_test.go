// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierkoo/flasktaskr/internal/metrics"
)

func limitedHandler(t *testing.T, rdb *redis.Client) http.Handler {
	t.Helper()
	rl := NewRateLimiter(rdb, RateLimitConfig{
		Limit:    NewLimit(2, 2, time.Minute),
		FailOpen: true,
		OnLimited: func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("slow down"))
		},
	})
	return rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func post(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := limitedHandler(t, rdb)

	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.1:1234").Code)

	rec := post(h, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "slow down", rec.Body.String())

	assert.Equal(t, http.StatusOK, post(h, "10.0.0.2:1234").Code,
		"other clients keep their own budget")
}

func TestRateLimiterFallsBackWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	h := limitedHandler(t, rdb)

	local := metrics.RateLimitDecisions.WithLabelValues(backendLocal, metrics.OutcomeLimited)
	before := testutil.ToFloat64(local)

	assert.Equal(t, http.StatusOK, post(h, "10.0.0.3:1").Code)
	assert.Equal(t, http.StatusOK, post(h, "10.0.0.3:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(h, "10.0.0.3:1").Code)

	assert.Equal(t, before+1, testutil.ToFloat64(local))
}

func TestKeyByIPAndEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/complete/17/", nil)
	req.RemoteAddr = "192.0.2.1:5555"

	key := KeyByIPAndEndpoint(req)
	require.Equal(t, "taskr:ratelimit:ip:192.0.2.1:endpoint:/complete/{id}", key)
}

func TestRequestIDKeepsOrMints(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

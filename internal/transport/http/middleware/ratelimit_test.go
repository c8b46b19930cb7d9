package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rediscache "github.com/baechuer/city-population-api/internal/infrastructure/caching/redis"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func doFrom(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/cities", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := rediscache.New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	h := RateLimit(c, 2, time.Minute)(okHandler)

	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1:2222").Code)

	rr := doFrom(h, "10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "rate_limited")

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.2:1111").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1:4444").Code)
}

type brokenAllower struct{}

func (brokenAllower) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return true, errors.New("redis: connection refused")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := RateLimit(brokenAllower{}, 1, time.Minute)(okHandler)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1:1111").Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:5555"
	assert.Equal(t, "192.168.1.7", clientIP(req))

	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", clientIP(req))
}

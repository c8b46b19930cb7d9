package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/baechuer/city-population-api/internal/transport/http/response"
	zlog "github.com/rs/zerolog/log"
)

// Allower decides whether the request identified by key fits in the window.
type Allower interface {
	AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit applies a per-IP limit through a shared counter so that every
// instance behind the load balancer enforces the same budget. Counter errors
// fail open.
func RateLimit(a Allower, limit int, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := a.AllowRequest(r.Context(), clientIP(r), limit, window)
			if err != nil {
				zlog.Warn().Err(err).Msg("rate limit counter unavailable")
			}
			if !ok {
				w.Header().Set("Retry-After", retryAfter)
				response.Fail(w, http.StatusTooManyRequests, response.CodeRateLimited,
					"too many requests", nil, response.RequestIDFromRequest(r))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package response

import (
	"net/http"

	appCtx "github.com/baechuer/city-population-api/internal/pkg/context"
)

// RequestIDFromRequest prefers the id set by the RequestID middleware and falls
// back to the incoming header.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := appCtx.GetRequestID(r.Context()); v != "" {
		return v
	}
	return r.Header.Get("X-Request-Id")
}

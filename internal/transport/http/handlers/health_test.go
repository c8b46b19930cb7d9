package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	store := newMemStore()
	z := NewHealthHandler(newTestService(store, 0))

	t.Run("health_ok", func(t *testing.T) {
		rr := httptest.NewRecorder()
		z.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"OK","database":"connected"}`, rr.Body.String())
	})

	t.Run("health_degraded", func(t *testing.T) {
		store.setDown(true)
		defer store.setDown(false)

		rr := httptest.NewRecorder()
		z.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"status":"DEGRADED","database":"disconnected"}`, rr.Body.String())
	})

	t.Run("healthz_ignores_store", func(t *testing.T) {
		store.setDown(true)
		defer store.setDown(false)

		rr := httptest.NewRecorder()
		z.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})
}

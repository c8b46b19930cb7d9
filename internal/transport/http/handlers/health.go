package handlers

import (
	"net/http"

	"github.com/baechuer/city-population-api/internal/application/city"
	"github.com/baechuer/city-population-api/internal/transport/http/dto"
	"github.com/baechuer/city-population-api/internal/transport/http/response"
)

type HealthHandler struct {
	svc *city.Service
}

func NewHealthHandler(svc *city.Service) *HealthHandler { return &HealthHandler{svc: svc} }

// Health is the readiness probe: it needs a live round-trip to the store.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())

	status := http.StatusOK
	if !report.Ready() {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, dto.ToHealthResp(report))
}

// Healthz is the liveness probe; it never touches the store.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

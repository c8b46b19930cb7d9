package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/city-population-api/internal/application/city"
	"github.com/baechuer/city-population-api/internal/domain"
	"github.com/baechuer/city-population-api/internal/transport/http/dto"
	"github.com/baechuer/city-population-api/internal/transport/http/response"
	"github.com/baechuer/city-population-api/internal/transport/http/validate"
)

type CitiesHandler struct {
	svc *city.Service
}

func NewCitiesHandler(svc *city.Service) *CitiesHandler {
	return &CitiesHandler{svc: svc}
}

// Upsert handles POST /city.
func (h *CitiesHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertCityReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, r, domain.ErrInvalidBody("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		}))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, r, err)
		return
	}

	population, err := domain.ParsePopulation(req.Population)
	if err != nil {
		response.Err(w, r, err)
		return
	}

	res, err := h.svc.Upsert(r.Context(), city.UpsertCmd{
		City:       req.City,
		Population: population,
	})
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.ToUpsertCityResp(res))
}

// Get handles GET /city/{name}; name matching is case-insensitive.
func (h *CitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the param escaped
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	c, err := h.svc.Get(r.Context(), name)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, dto.ToCityResp(c))
}

// List handles GET /cities.
func (h *CitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context())
	if err != nil {
		response.Err(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(res.Total, 10))
	w.Header().Set("X-Result-Limit", strconv.Itoa(h.svc.ListLimit()))
	response.JSON(w, http.StatusOK, dto.ToListCitiesResp(res))
}

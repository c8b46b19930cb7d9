package city

import (
	"context"

	"github.com/baechuer/city-population-api/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type ListResult struct {
	Count  int
	Total  int64
	Cities []domain.City
}

// Truncated reports whether the store holds more cities than were returned.
func (r *ListResult) Truncated() bool { return r.Total > int64(r.Count) }

// List returns every stored city up to the configured limit, ordered by name.
func (s *Service) List(ctx context.Context) (*ListResult, error) {
	var (
		cities []domain.City
		total  int64
	)
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		cities, total, err = s.store.List(ctx, s.listLimit)
		return err
	})
	if err != nil {
		zlog.Error().Err(err).Msg("list cities failed")
		return nil, storeErr("list", "", err)
	}
	if cities == nil {
		cities = []domain.City{}
	}

	res := &ListResult{Count: len(cities), Total: total, Cities: cities}
	if res.Truncated() {
		zlog.Warn().
			Int64("total", total).
			Int("limit", s.listLimit).
			Msg("city list truncated")
	}
	return res, nil
}

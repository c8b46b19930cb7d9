package city

import (
	"context"

	"github.com/baechuer/city-population-api/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

// Get looks a city up case-insensitively. A missing city is domain.ErrNotFound,
// never a zero-population record.
func (s *Service) Get(ctx context.Context, rawName string) (*domain.City, error) {
	name, err := domain.NormalizeCity(rawName)
	if err != nil {
		return nil, err
	}

	var c *domain.City
	err = s.call(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.store.Get(ctx, name)
		return err
	})
	if err != nil {
		if domain.IsNotFound(err) {
			zlog.Debug().Str("city", name).Msg("city not found")
			return nil, err
		}
		zlog.Error().Err(err).Str("city", name).Msg("get city failed")
		return nil, storeErr("get", name, err)
	}
	return c, nil
}

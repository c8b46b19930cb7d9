package city

import (
	"context"
	"errors"
	"time"

	"github.com/baechuer/city-population-api/internal/domain"
	"github.com/baechuer/city-population-api/internal/metrics"
	zlog "github.com/rs/zerolog/log"
)

const RoutingKeyUpserted = "city.upserted"

type UpsertCmd struct {
	City       string
	Population int64
}

type UpsertResult struct {
	City       string
	Population int64
	Operation  domain.Operation
}

// CityUpserted is the payload of the city.upserted domain event.
type CityUpserted struct {
	City       string           `json:"city"`
	Population int64            `json:"population"`
	Operation  domain.Operation `json:"operation"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// Upsert inserts or replaces the population for a city and reports which one
// happened. The decision is a create-only write: a conflict means the city
// already existed, so concurrent first writes yield exactly one insert.
func (s *Service) Upsert(ctx context.Context, cmd UpsertCmd) (*UpsertResult, error) {
	name, err := domain.NormalizeCity(cmd.City)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePopulation(cmd.Population); err != nil {
		zlog.Warn().Int64("population", cmd.Population).Msg("invalid population value")
		return nil, err
	}

	c := &domain.City{Name: name, Population: cmd.Population}
	op := domain.OpInsert

	err = s.call(ctx, func(ctx context.Context) error { return s.store.Create(ctx, c) })
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCityExists):
		op = domain.OpUpdate
		if err := s.call(ctx, func(ctx context.Context) error { return s.store.Replace(ctx, c) }); err != nil {
			zlog.Error().Err(err).Str("city", name).Msg("upsert failed")
			return nil, storeErr("replace", name, err)
		}
	default:
		zlog.Error().Err(err).Str("city", name).Msg("upsert failed")
		return nil, storeErr("create", name, err)
	}

	metrics.RecordUpsert(string(op))
	zlog.Info().
		Str("city", name).
		Int64("population", c.Population).
		Str("operation", string(op)).
		Msg("city upserted")

	s.publishUpserted(ctx, c, op)

	return &UpsertResult{City: name, Population: c.Population, Operation: op}, nil
}

// publishUpserted is best effort: the write already succeeded.
func (s *Service) publishUpserted(ctx context.Context, c *domain.City, op domain.Operation) {
	evt := CityUpserted{
		City:       c.Name,
		Population: c.Population,
		Operation:  op,
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.pub.PublishEvent(ctx, RoutingKeyUpserted, evt); err != nil {
		metrics.RecordPublishFailure(RoutingKeyUpserted)
		zlog.Warn().Err(err).Str("city", c.Name).Msg("publish city.upserted failed")
	}
}

package city

import (
	"context"

	"github.com/baechuer/city-population-api/internal/domain"
	"github.com/baechuer/city-population-api/internal/metrics"
	zlog "github.com/rs/zerolog/log"
)

const storeDependency = "elasticsearch"

// Health performs a live round-trip to the store. A process that is up but
// cannot reach the store reports DEGRADED.
func (s *Service) Health(ctx context.Context) domain.HealthReport {
	if err := s.call(ctx, s.store.Ping); err != nil {
		zlog.Error().Err(err).Msg("store health check failed")
		metrics.SetDependencyHealth(storeDependency, false)
		return domain.HealthReport{Status: domain.HealthDegraded, StoreReachable: false}
	}

	metrics.SetDependencyHealth(storeDependency, true)
	return domain.HealthReport{Status: domain.HealthOK, StoreReachable: true}
}

package city

import (
	"context"
	"time"

	"github.com/baechuer/city-population-api/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// CityStore is the document store contract. Implementations map absence to
// domain.ErrNotFound, create conflicts to domain.ErrCityExists and transport
// failures to domain.ErrStoreUnavailable.
type CityStore interface {
	Get(ctx context.Context, name string) (*domain.City, error)
	// Create writes c only if no document with the same name exists.
	Create(ctx context.Context, c *domain.City) error
	Replace(ctx context.Context, c *domain.City) error
	// List returns at most limit cities and the store's total hit count.
	List(ctx context.Context, limit int) ([]domain.City, int64, error)
	Ping(ctx context.Context) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, payload any) error
}

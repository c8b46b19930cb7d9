package city

import (
	"context"
	"time"

	"github.com/baechuer/city-population-api/internal/domain"
)

const (
	DefaultStoreTimeout = 10 * time.Second

	// DefaultListLimit matches Elasticsearch's default index.max_result_window.
	DefaultListLimit = 10000
)

type Service struct {
	store CityStore
	pub   EventPublisher
	clock Clock

	storeTimeout time.Duration
	listLimit    int
}

func New(
	store CityStore,
	clock Clock,
	pub EventPublisher,
	storeTimeout time.Duration,
	listLimit int,
) *Service {
	// Defaults if 0
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	if listLimit <= 0 || listLimit > DefaultListLimit {
		listLimit = DefaultListLimit
	}
	if pub == nil {
		pub = NoopPublisher{}
	}

	return &Service{
		store:        store,
		pub:          pub,
		clock:        clock,
		storeTimeout: storeTimeout,
		listLimit:    listLimit,
	}
}

func (s *Service) ListLimit() int { return s.listLimit }

// call bounds a single store round-trip with the configured timeout.
func (s *Service) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return fn(ctx)
}

// storeErr keeps domain errors as they are and classifies anything else as
// the store being unavailable.
func storeErr(op, name string, err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	return domain.ErrStoreUnavailable(op, name, err)
}

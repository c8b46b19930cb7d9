package handlers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/city-population-api/internal/application/city"
	"github.com/baechuer/city-population-api/internal/domain"
)

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2025, 12, 26, 12, 0, 0, 0, time.UTC) }

// memStore is an in-memory city.CityStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]int64
	down bool
}

func newMemStore() *memStore { return &memStore{data: map[string]int64{}} }

var errDown = errors.New("dial tcp: connection refused")

func (m *memStore) Get(ctx context.Context, name string) (*domain.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, errDown
	}
	p, ok := m.data[name]
	if !ok {
		return nil, domain.ErrNotFound("city not found")
	}
	return &domain.City{Name: name, Population: p}, nil
}

func (m *memStore) Create(ctx context.Context, c *domain.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	if _, ok := m.data[c.Name]; ok {
		return domain.ErrCityExists
	}
	m.data[c.Name] = c.Population
	return nil
}

func (m *memStore) Replace(ctx context.Context, c *domain.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	m.data[c.Name] = c.Population
	return nil
}

func (m *memStore) List(ctx context.Context, limit int) ([]domain.City, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, 0, errDown
	}
	out := make([]domain.City, 0, len(m.data))
	for n, p := range m.data {
		out = append(out, domain.City{Name: n, Population: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := int64(len(out))
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return errDown
	}
	return nil
}

func (m *memStore) setDown(v bool) {
	m.mu.Lock()
	m.down = v
	m.mu.Unlock()
}

func newTestService(store city.CityStore, listLimit int) *city.Service {
	return city.New(store, stubClock{}, nil, time.Second, listLimit)
}

package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/baechuer/city-population-api/internal/domain"
)

const (
	fieldCity       = "city"
	fieldPopulation = "population"

	DefaultIndex = "cities"
)

// Repo stores cities as documents whose _id is the normalized city name.
type Repo struct {
	es      *Client
	index   string
	refresh string
}

// New returns a Repo. refresh is passed to every write ("true", "wait_for" or
// "false") and controls when writes become visible to List.
func New(c *Client, index, refresh string) *Repo {
	if index == "" {
		index = DefaultIndex
	}
	if refresh == "" {
		refresh = "true"
	}
	return &Repo{es: c, index: index, refresh: refresh}
}

func (r *Repo) Index() string { return r.index }

type cityDoc struct {
	City       string `json:"city"`
	Population int64  `json:"population"`
}

func encodeCity(c *domain.City) (*bytes.Reader, error) {
	b, err := json.Marshal(cityDoc{City: c.Name, Population: c.Population})
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func (r *Repo) Get(ctx context.Context, name string) (*domain.City, error) {
	res, err := r.es.Get(r.index, name, r.es.Get.WithContext(ctx))
	if err != nil {
		return nil, domain.ErrStoreUnavailable("get", name, err)
	}
	defer res.Body.Close()

	// 404 covers both a missing document and a missing index.
	if res.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound("city not found")
	}
	if res.IsError() {
		return nil, domain.ErrStoreUnavailable("get", name, decodeError(res))
	}

	var body struct {
		Found  bool    `json:"found"`
		Source cityDoc `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode get %q: %w", name, err)
	}
	if !body.Found {
		return nil, domain.ErrNotFound("city not found")
	}
	return &domain.City{Name: name, Population: body.Source.Population}, nil
}

// Create indexes c with op_type=create. An existing document yields
// domain.ErrCityExists.
func (r *Repo) Create(ctx context.Context, c *domain.City) error {
	body, err := encodeCity(c)
	if err != nil {
		return err
	}

	res, err := r.es.Create(r.index, c.Name, body,
		r.es.Create.WithContext(ctx),
		r.es.Create.WithRefresh(r.refresh),
	)
	if err != nil {
		return domain.ErrStoreUnavailable("create", c.Name, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusConflict {
		return domain.ErrCityExists
	}
	if res.IsError() {
		return domain.ErrStoreUnavailable("create", c.Name, decodeError(res))
	}
	return nil
}

func (r *Repo) Replace(ctx context.Context, c *domain.City) error {
	body, err := encodeCity(c)
	if err != nil {
		return err
	}

	res, err := r.es.Index(r.index, body,
		r.es.Index.WithDocumentID(c.Name),
		r.es.Index.WithContext(ctx),
		r.es.Index.WithRefresh(r.refresh),
	)
	if err != nil {
		return domain.ErrStoreUnavailable("replace", c.Name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return domain.ErrStoreUnavailable("replace", c.Name, decodeError(res))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source cityDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// List returns up to limit cities sorted by name plus the total number of
// documents in the index.
func (r *Repo) List(ctx context.Context, limit int) ([]domain.City, int64, error) {
	q, err := json.Marshal(map[string]any{
		"query":            map[string]any{"match_all": map[string]any{}},
		"size":             limit,
		"sort":             []any{map[string]any{fieldCity: "asc"}},
		"track_total_hits": true,
	})
	if err != nil {
		return nil, 0, err
	}

	res, err := r.es.Search(
		r.es.Search.WithContext(ctx),
		r.es.Search.WithIndex(r.index),
		r.es.Search.WithBody(bytes.NewReader(q)),
	)
	if err != nil {
		return nil, 0, domain.ErrStoreUnavailable("list", "", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return []domain.City{}, 0, nil
	}
	if res.IsError() {
		return nil, 0, domain.ErrStoreUnavailable("list", "", decodeError(res))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, 0, fmt.Errorf("decode search: %w", err)
	}

	out := make([]domain.City, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		out = append(out, domain.City{Name: h.Source.City, Population: h.Source.Population})
	}
	return out, sr.Hits.Total.Value, nil
}

// Ping checks cluster health. green and yellow count as reachable; yellow
// only means replicas are not fully allocated.
func (r *Repo) Ping(ctx context.Context) error {
	h, err := r.es.clusterStatus(ctx, "")
	if err != nil {
		return domain.ErrStoreUnavailable("ping", "", err)
	}
	if !statusAtLeast(h.Status, "yellow") {
		return domain.ErrStoreUnavailable("ping", "", fmt.Errorf("cluster status %q", h.Status))
	}
	return nil
}

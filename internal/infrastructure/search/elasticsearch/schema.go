package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/baechuer/city-population-api/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type SchemaConfig struct {
	Shards   int
	Replicas int
}

func (sc SchemaConfig) withDefaults() SchemaConfig {
	if sc.Shards <= 0 {
		sc.Shards = 1
	}
	if sc.Replicas < 0 {
		sc.Replicas = 0
	}
	return sc
}

// indexBody is the explicit mapping for the cities index: the name is an exact
// match keyword, the population a 64-bit integer.
func indexBody(sc SchemaConfig) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   sc.Shards,
			"number_of_replicas": sc.Replicas,
		},
		"mappings": map[string]any{
			"dynamic": "strict",
			"properties": map[string]any{
				fieldCity:       map[string]any{"type": "keyword"},
				fieldPopulation: map[string]any{"type": "long"},
			},
		},
	}
}

// EnsureSchema creates the index with its explicit mapping when it does not
// exist yet. An existing index is left untouched.
func (r *Repo) EnsureSchema(ctx context.Context, sc SchemaConfig) error {
	sc = sc.withDefaults()

	res, err := r.es.Indices.Exists([]string{r.index}, r.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return domain.ErrStoreUnavailable("index_exists", "", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		zlog.Info().Str("index", r.index).Msg("index already exists")
		return nil
	case http.StatusNotFound:
	default:
		return domain.ErrStoreUnavailable("index_exists", "", &ResponseError{Status: res.StatusCode})
	}

	body, err := json.Marshal(indexBody(sc))
	if err != nil {
		return err
	}

	res, err = r.es.Indices.Create(
		r.index,
		r.es.Indices.Create.WithBody(bytes.NewReader(body)),
		r.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return domain.ErrStoreUnavailable("index_create", "", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := decodeError(res)
		var re *ResponseError
		// another instance won the race
		if errors.As(err, &re) && re.Type == "resource_already_exists_exception" {
			zlog.Info().Str("index", r.index).Msg("index created concurrently")
			return nil
		}
		return domain.ErrStoreUnavailable("index_create", "", err)
	}

	zlog.Info().
		Str("index", r.index).
		Int("shards", sc.Shards).
		Int("replicas", sc.Replicas).
		Msg("created index")
	return nil
}

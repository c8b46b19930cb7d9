package elasticsearch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeES speaks just enough of the Elasticsearch REST API for Repo.
type fakeES struct {
	mu sync.Mutex

	indexExists bool
	indexBody   map[string]any
	docs        map[string]cityDoc

	clusterStatus string
	failWith      int
	refreshSeen   []string

	// the first stallN requests sleep for stall before being served
	stallN   int32
	stall    time.Duration
	requests atomic.Int32
}

func newFakeES() *fakeES {
	return &fakeES{docs: map[string]cityDoc{}, clusterStatus: "green"}
}

func (f *fakeES) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")

	if n := f.requests.Add(1); n <= f.stallN {
		time.Sleep(f.stall)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		f.writeJSON(w, f.failWith, map[string]any{
			"error":  map[string]any{"type": "cluster_block_exception", "reason": "blocked"},
			"status": f.failWith,
		})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2 && parts[0] == "_cluster" && parts[1] == "health":
		f.writeJSON(w, http.StatusOK, map[string]any{"status": f.clusterStatus, "timed_out": false})

	case len(parts) == 1 && r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)

	case len(parts) == 1 && r.Method == http.MethodPut:
		if f.indexExists {
			f.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{"type": "resource_already_exists_exception", "reason": "exists"},
			})
			return
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &f.indexBody)
		f.indexExists = true
		f.writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "index": parts[0]})

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodGet:
		d, ok := f.docs[parts[2]]
		if !ok {
			f.writeJSON(w, http.StatusNotFound, map[string]any{"_id": parts[2], "found": false})
			return
		}
		f.writeJSON(w, http.StatusOK, map[string]any{"_id": parts[2], "found": true, "_source": d})

	case len(parts) == 3 && parts[1] == "_create":
		f.refreshSeen = append(f.refreshSeen, r.URL.Query().Get("refresh"))
		if _, ok := f.docs[parts[2]]; ok {
			f.writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]any{"type": "version_conflict_engine_exception", "reason": "document already exists"},
			})
			return
		}
		var d cityDoc
		_ = json.NewDecoder(r.Body).Decode(&d)
		f.docs[parts[2]] = d
		f.writeJSON(w, http.StatusCreated, map[string]any{"_id": parts[2], "result": "created"})

	case len(parts) == 3 && parts[1] == "_doc":
		f.refreshSeen = append(f.refreshSeen, r.URL.Query().Get("refresh"))
		var d cityDoc
		_ = json.NewDecoder(r.Body).Decode(&d)
		_, existed := f.docs[parts[2]]
		f.docs[parts[2]] = d
		result := "created"
		if existed {
			result = "updated"
		}
		f.writeJSON(w, http.StatusOK, map[string]any{"_id": parts[2], "result": result})

	case len(parts) == 2 && parts[1] == "_search":
		if !f.indexExists {
			f.writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"type": "index_not_found_exception", "reason": "no such index"},
			})
			return
		}
		var q struct {
			Size int `json:"size"`
		}
		_ = json.NewDecoder(r.Body).Decode(&q)

		names := make([]string, 0, len(f.docs))
		for n := range f.docs {
			names = append(names, n)
		}
		sort.Strings(names)

		hits := []map[string]any{}
		for i, n := range names {
			if i >= q.Size {
				break
			}
			hits = append(hits, map[string]any{"_id": n, "_source": f.docs[n]})
		}
		f.writeJSON(w, http.StatusOK, map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": len(names), "relation": "eq"},
				"hits":  hits,
			},
		})

	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
	}
}

func newTestRepo(t *testing.T, f *fakeES) *Repo {
	t.Helper()
	return newTestRepoWith(t, f, Config{MaxRetries: 1})
}

func newTestRepoWith(t *testing.T, f *fakeES, cfg Config) *Repo {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg.Addresses = []string{srv.URL}
	c, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return New(c, "cities", "")
}

//go:build integration
// +build integration

package cases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/baechuer/city-population-api/test/integration/infra/wait"
)

type Env struct {
	BaseURL string
}

// setup expects a running stack (service + Elasticsearch) at CITY_BASE_URL.
func setup(t *testing.T) Env {
	t.Helper()

	base := strings.TrimRight(os.Getenv("CITY_BASE_URL"), "/")
	if base == "" {
		base = "http://localhost:8000"
	}
	if err := wait.HTTP200(base+"/health", 30*time.Second); err != nil {
		t.Skipf("service not reachable: %v", err)
	}
	return Env{BaseURL: base}
}

// uniqueCity keeps runs against a shared index independent.
func uniqueCity(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

type ErrorEnvelope struct {
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Meta    map[string]string `json:"meta"`
	} `json:"error,omitempty"`
}

func doJSON(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	code, out, err := send(method, url, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return code, out
}

// send is safe to call from goroutines other than the test's own.
func send(method, url string, body any) (int, []byte, error) {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return 0, nil, err
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}

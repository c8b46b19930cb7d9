package elasticsearch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ResponseError is an error reply from Elasticsearch.
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch: status %d", e.Status)
	}
	return fmt.Sprintf("elasticsearch: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// decodeError reads an error response body. The body is left drained but not
// closed.
func decodeError(res *esapi.Response) error {
	re := &ResponseError{Status: res.StatusCode}

	raw, err := io.ReadAll(res.Body)
	if err != nil || len(raw) == 0 {
		return re
	}
	var b errorBody
	if json.Unmarshal(raw, &b) == nil {
		re.Type = b.Error.Type
		re.Reason = b.Error.Reason
	}
	return re
}

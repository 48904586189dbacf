package binding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPViewExecutor executes views against a backend that exposes ad-hoc data
// views over HTTP. The backend may answer with a single flat record or with a
// sequence of records, in which case the first element is used.
type HTTPViewExecutor struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPViewExecutor creates an executor for the given backend base URL.
func NewHTTPViewExecutor(baseURL string) *HTTPViewExecutor {
	return &HTTPViewExecutor{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

// ExecuteView posts the view request and decodes the response row.
func (e *HTTPViewExecutor) ExecuteView(ctx context.Context, req ViewRequest) (map[string]interface{}, error) {
	body, err := json.Marshal(map[string]string{
		"view":        req.ViewName,
		"filterField": req.FilterField,
		"filterValue": req.FilterValue,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/views/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build view request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute view: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("view execution failed: HTTP %d", resp.StatusCode)
	}

	var decoded interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode view response: %w", err)
	}

	return firstRow(decoded)
}

// firstRow extracts the row from a response that is either a single record
// or a sequence of records. An empty sequence is a valid no-match response.
func firstRow(decoded interface{}) (map[string]interface{}, error) {
	switch v := decoded.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return v, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, nil
		}
		row, ok := v[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("view returned a non-record element: %T", v[0])
		}
		return row, nil
	default:
		return nil, fmt.Errorf("view returned an unexpected shape: %T", decoded)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/posprint/receipt-templates/internal/assemble"
	"github.com/posprint/receipt-templates/internal/binding"
	"github.com/posprint/receipt-templates/internal/resolve"
	"github.com/posprint/receipt-templates/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	templates, err := store.NewFileStore(filepath.Join(t.TempDir(), "templates.json"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	assembler := assemble.New(
		binding.NewResolver(nil),
		resolve.NewFormatter(resolve.DefaultLocale, resolve.DefaultCurrency),
	)

	return NewServer(templates, assembler)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	if w.Code != 200 {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTemplateLifecycle(t *testing.T) {
	s := newTestServer(t)

	config := map[string]interface{}{
		"paperWidth": "80mm",
		"sections": []map[string]interface{}{
			{"id": "header", "name": "Header", "order": 1, "kind": "fields"},
		},
	}
	configBytes, _ := json.Marshal(config)

	w := doJSON(t, s, http.MethodPost, "/template", map[string]interface{}{
		"name":          "Factura",
		"receiptKind":   "invoice",
		"configuration": json.RawMessage(configBytes),
	})
	if w.Code != 200 {
		t.Fatalf("expected 200 saving template, got %d: %s", w.Code, w.Body.String())
	}

	var saveResp struct {
		TemplateID string `json:"template_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saveResp); err != nil {
		t.Fatalf("failed to decode save response: %v", err)
	}
	if saveResp.TemplateID == "" {
		t.Fatal("expected a template id")
	}

	w = doJSON(t, s, http.MethodGet, "/template/"+saveResp.TemplateID, nil)
	if w.Code != 200 {
		t.Errorf("expected 200 fetching template, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/templates", nil)
	if w.Code != 200 {
		t.Errorf("expected 200 listing templates, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodDelete, "/template/"+saveResp.TemplateID, nil)
	if w.Code != 200 {
		t.Errorf("expected 200 deleting template, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/template/"+saveResp.TemplateID, nil)
	if w.Code != 404 {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestSaveTemplateRejectsBadConfiguration(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/template", map[string]interface{}{
		"name":          "Broken",
		"configuration": json.RawMessage(`"not an object"`),
	})
	if w.Code != 400 {
		t.Errorf("expected 400 for bad configuration, got %d", w.Code)
	}
}

func TestRenderFallsBackToDefaultTemplate(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/render", map[string]interface{}{
		"data": map[string]interface{}{
			"business": map[string]interface{}{"name": "Colmado Luna"},
		},
	})
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Fragments []assemble.Fragment `json:"fragments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode render response: %v", err)
	}
	if len(resp.Fragments) == 0 {
		t.Error("expected fragments from the default template")
	}
}

func TestRenderUnknownTemplateID(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/render", map[string]interface{}{
		"template_id": "does-not-exist",
	})
	if w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPreviewReturnsPNG(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/preview", map[string]interface{}{
		"data": map[string]interface{}{},
	})
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}

	body := w.Body.Bytes()
	if len(body) < 8 || !bytes.Equal(body[:4], []byte("\x89PNG")) {
		t.Error("expected a PNG body")
	}
}

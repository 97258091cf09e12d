package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"robot-config-studio/internal/cache"
	"robot-config-studio/internal/events"
	"robot-config-studio/internal/studio"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := studio.NewService(cache.NewConfigCache(nil), nil, nil, events.NewEventBus(), nil)
	if _, err := svc.LoadDefaultProfile(context.Background(), "default"); err != nil {
		t.Fatalf("LoadDefaultProfile failed: %v", err)
	}

	return NewServer(ServerConfig{Port: 0, Host: "127.0.0.1", AllowedOrigins: "*", ProductionMode: true},
		svc, events.NewEventBus(), nil)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// TestHealthEndpoint tests the liveness probe
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}

// TestGetConfigEndpoint tests profile retrieval and the 404 path
func TestGetConfigEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/profiles/default/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}
	if _, ok := cfg["engines"]; !ok {
		t.Error("Config response missing engines")
	}

	w = doRequest(t, s, http.MethodGet, "/api/profiles/missing/config", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown profile, got %d", w.Code)
	}
}

// TestExportEndpoint tests the flat-file download
func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/profiles/default/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gInput_1_AP_Buy_Grid=40") {
		t.Error("Export body missing expected key")
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "default.set") {
		t.Error("Expected attachment filename header")
	}
}

// TestImportPreviewEndpoint tests preview without commit
func TestImportPreviewEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"text":"gInput_1_AP_Buy_Grid=50\n"}`
	w := doRequest(t, s, http.MethodPost, "/api/profiles/default/import/preview", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected 1 pending change, got %d", resp.Count)
	}

	// Nothing was committed.
	w = doRequest(t, s, http.MethodGet, "/api/profiles/default/export", "")
	if !strings.Contains(w.Body.String(), "gInput_1_AP_Buy_Grid=40") {
		t.Error("Preview must not commit changes")
	}
}

// TestImportApplyEndpoint tests the commit path with a target scope
func TestImportApplyEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"text":"gInput_1_AP_Buy_Grid=50\ngInput_1_BP_Buy_Grid=55\n","target":{"engines":["A"]}}`
	w := doRequest(t, s, http.MethodPost, "/api/profiles/default/import/apply", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("Expected 1 applied change, got %d", resp.Count)
	}

	w = doRequest(t, s, http.MethodGet, "/api/profiles/default/export", "")
	if !strings.Contains(w.Body.String(), "gInput_1_AP_Buy_Grid=50") {
		t.Error("In-scope change missing from export")
	}
	if !strings.Contains(w.Body.String(), "gInput_1_BP_Buy_Grid=40") {
		t.Error("Out-of-scope change leaked into export")
	}
}

// TestSetParameterEndpoint tests the targeted single-parameter edit
func TestSetParameterEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"param":"TakeProfit","value":"90","target":{"engines":["A"],"logics":["Power"]}}`
	w := doRequest(t, s, http.MethodPost, "/api/profiles/default/parameter", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodPost, "/api/profiles/default/parameter", `{"param":"Bogus","value":"1"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown parameter, got %d", w.Code)
	}
}

// TestValidateEndpoint tests the advisory check endpoint
func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/profiles/default/validate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response: %v", err)
	}
	if _, ok := resp["count"]; !ok {
		t.Error("Validation response missing count")
	}
}

// TestCompareEndpoint tests the raw flat-file comparison
func TestCompareEndpoint(t *testing.T) {
	s := newTestServer(t)

	body := `{"left":"a=1\n","right":"a=2\n"}`
	w := doRequest(t, s, http.MethodPost, "/api/compare", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Clean bool `json:"clean"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Bad response: %v", err)
	}
	if resp.Clean {
		t.Error("Expected differing files to be reported unclean")
	}
}

// TestSnapshotEndpointsWithoutStore tests the degraded-mode error paths
func TestSnapshotEndpointsWithoutStore(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/profiles/default/snapshots", `{"label":"x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500 without a store, got %d", w.Code)
	}
}

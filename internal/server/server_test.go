package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/lualens/lualens/internal/profile"
	"github.com/lualens/lualens/internal/store"
)

func testReport() *profile.Report {
	return &profile.Report{
		TotalTime: 1.2,
		Functions: map[string]*profile.FunctionInformation{
			"main": {
				Path: profile.Path{"main"}, NumCalls: 1,
				MinTime: 0.9, TotalTime: 0.9, MaxTime: 0.9,
				Calls: map[string]*profile.CallsInformation{
					"string.rep": {NumCalls: 2, TotalTime: 0.15},
					"math.floor": {NumCalls: 1, TotalTime: 0.6},
				},
			},
			"string.rep": {
				Path: profile.Path{"string", "rep"}, NumCalls: 2,
				MinTime: 0.05, TotalTime: 0.15, MaxTime: 0.1,
				Calls: map[string]*profile.CallsInformation{},
			},
			"math.floor": {
				Path: profile.Path{"math", "floor"}, NumCalls: 1,
				MinTime: 0.6, TotalTime: 0.6, MaxTime: 0.6,
				Calls: map[string]*profile.CallsInformation{},
			},
		},
	}
}

func setupTestServer(t *testing.T) (*Server, store.SessionID) {
	tmpDir := t.TempDir()
	st, err := store.Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	id, err := st.SaveSession(&store.Session{
		Script:    "bench.lua",
		Entry:     "main",
		StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}, testReport())
	if err != nil {
		t.Fatalf("failed to save session: %v", err)
	}

	return &Server{store: st, port: 4173}, id
}

func TestHandleHealth(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp["status"])
	}
}

func TestHandleStats(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()

	s.handleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var stats store.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.SessionCount != 1 {
		t.Errorf("expected 1 session, got %d", stats.SessionCount)
	}
	if stats.FunctionCount != 3 {
		t.Errorf("expected 3 functions, got %d", stats.FunctionCount)
	}
	if stats.CallCount != 2 {
		t.Errorf("expected 2 call edges, got %d", stats.CallCount)
	}
}

func TestHandleSessions(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := httptest.NewRecorder()

	s.handleSessions(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var sessions []*store.Session
	if err := json.NewDecoder(w.Body).Decode(&sessions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Script != "bench.lua" {
		t.Errorf("expected script 'bench.lua', got '%s'", sessions[0].Script)
	}
}

func TestHandleSessionByID(t *testing.T) {
	s, id := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/1", nil)
	w := httptest.NewRecorder()

	s.handleSessionByID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session *store.Session `json:"session"`
		Report  struct {
			Functions []struct {
				Path     string `json:"path"`
				NumCalls uint64 `json:"num_calls"`
			} `json:"functions"`
			TotalTime float64 `json:"total_time"`
		} `json:"report"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Session.ID != id {
		t.Errorf("expected session ID %d, got %d", id, resp.Session.ID)
	}
	if resp.Report.TotalTime != 1.2 {
		t.Errorf("expected total time 1.2, got %f", resp.Report.TotalTime)
	}
	if len(resp.Report.Functions) != 3 {
		t.Fatalf("expected 3 functions, got %d", len(resp.Report.Functions))
	}
	// Sorted by path
	if resp.Report.Functions[0].Path != "main" {
		t.Errorf("expected first function 'main', got '%s'", resp.Report.Functions[0].Path)
	}
}

func TestHandleSessionNotFound(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/999", nil)
	w := httptest.NewRecorder()

	s.handleSessionByID(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleSessionGraph(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/1/graph", nil)
	w := httptest.NewRecorder()

	s.handleSessionByID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp GraphResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(resp.Nodes))
	}
	if len(resp.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(resp.Edges))
	}
	for _, edge := range resp.Edges {
		if edge.Source != "main" {
			t.Errorf("expected all edges from main, got source '%s'", edge.Source)
		}
	}
}

func TestHandleSessionHotPath(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/1/hotpath", nil)
	w := httptest.NewRecorder()

	s.handleSessionByID(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp HotPathResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Nodes) != 2 {
		t.Fatalf("expected 2 hot path nodes, got %d", len(resp.Nodes))
	}
	if resp.Nodes[0].Path != "main" {
		t.Errorf("expected hot path to start at main, got '%s'", resp.Nodes[0].Path)
	}
	// math.floor's edge (0.6) beats string.rep's (0.15).
	if resp.Nodes[1].Path != "math.floor" {
		t.Errorf("expected costliest callee math.floor, got '%s'", resp.Nodes[1].Path)
	}
	if resp.CollapsedCount != 1 {
		t.Errorf("expected 1 collapsed edge, got %d", resp.CollapsedCount)
	}
	if resp.Nodes[0].BranchBadge == nil || resp.Nodes[0].BranchBadge.Labels[0] != "string.rep" {
		t.Errorf("expected string.rep collapsed off the hot path, got %+v", resp.Nodes[0].BranchBadge)
	}
}

func TestHandleSessionInvalidID(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil)
	w := httptest.NewRecorder()

	s.handleSessionByID(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCorsMiddleware(t *testing.T) {
	s, _ := setupTestServer(t)

	handler := s.corsMiddleware(s.handleHealth)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

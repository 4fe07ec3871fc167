package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nrsim/internal/casualty"
	"nrsim/internal/config"
	"nrsim/internal/sim"
)

func testServer(t *testing.T) (*Server, *sim.Simulator) {
	t.Helper()
	cfg := config.Default()
	cfg.RunID = "test-run"
	s := sim.New(cfg, nil, nil, nil, time.Second)
	return NewServer(s), s
}

func TestHandleStatus(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", resp.StatusCode)
	}
	var status sim.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status.RunID != "test-run" {
		t.Errorf("Expected run ID test-run, got %q", status.RunID)
	}
	if status.Casualty != casualty.LabelNominal {
		t.Errorf("Expected nominal casualty label, got %q", status.Casualty)
	}
}

func TestHandleInject(t *testing.T) {
	server, s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/inject?type=resin_overheat&severity=major&duration=20", nil)
	w := httptest.NewRecorder()
	server.handleInject(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["accepted"] != true {
		t.Errorf("Expected injection to be accepted, got %v", body["accepted"])
	}
	if status := s.Status(); status.Casualty != string(casualty.ResinOverheat) {
		t.Errorf("Expected active resin_overheat, got %q", status.Casualty)
	}

	// A second casualty while one is active must be rejected.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/inject?type=fuel_element_failure&severity=minor&duration=10", nil)
	server.handleInject(w, req)
	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("Expected status Conflict for overlapping injection, got %v", w.Result().StatusCode)
	}
}

func TestHandleInjectUnknownType(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/inject?type=meltdown", nil)
	w := httptest.NewRecorder()
	server.handleInject(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status BadRequest, got %v", w.Result().StatusCode)
	}
}

func TestHandleHealthz(t *testing.T) {
	server, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	server.handleHealthz(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("Expected status NoContent, got %v", w.Result().StatusCode)
	}
}

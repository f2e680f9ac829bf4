package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runProbe(t *testing.T, p Probe) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := HealthHandler(p)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return rec, body
}

func TestHealthHandler_Healthy(t *testing.T) {
	rec, body := runProbe(t, Probe{
		Driver:  "postgres",
		Ping:    func(context.Context) error { return nil },
		Details: func() interface{} { return &PoolStats{TotalConns: 3, MaxConns: 20} },
	})

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %v", body["status"])
	}
	details, ok := body["details"].(map[string]interface{})
	if !ok || details["max_conns"] != float64(20) {
		t.Errorf("expected pool details, got %v", body["details"])
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	rec, body := runProbe(t, Probe{
		Driver: "mongo",
		Ping:   func(context.Context) error { return errors.New("server selection timeout") },
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if body["error"] != "server selection timeout" {
		t.Errorf("unexpected error field: %v", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Error("expected no details without a Details func")
	}
	if body["driver"] != "mongo" {
		t.Errorf("expected driver mongo, got %v", body["driver"])
	}
}

func TestHealthHandler_PingHasDeadline(t *testing.T) {
	runProbe(t, Probe{
		Driver: "postgres",
		Ping: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected ping context to carry a deadline")
			}
			return nil
		},
	})
}

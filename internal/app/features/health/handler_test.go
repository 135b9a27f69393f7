package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/projectflow/internal/app/features/health"
	"github.com/dalemusser/projectflow/internal/app/store"
	"github.com/dalemusser/projectflow/internal/app/store/memstore"
	"go.uber.org/zap"
)

type response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
	Database  string `json:"database"`
	Error     string `json:"error"`
}

func serve(t *testing.T, st store.Store) response {
	t.Helper()
	handler := health.NewHandler(st, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return got
}

func TestServe_MemoryStore(t *testing.T) {
	got := serve(t, memstore.New())

	if got.Status != "OK" {
		t.Errorf("status: got %q, want %q", got.Status, "OK")
	}
	if got.Store != "memory" {
		t.Errorf("store: got %q, want %q", got.Store, "memory")
	}
	if got.Database != "connected" {
		t.Errorf("database: got %q, want %q", got.Database, "connected")
	}
	if got.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("server selection timeout") }

func TestServe_StoreDownStillOK(t *testing.T) {
	got := serve(t, store.Store{Backend: "mongo", Pinger: downPinger{}})

	if got.Status != "OK" {
		t.Errorf("status: got %q, want %q", got.Status, "OK")
	}
	if got.Database != "disconnected" {
		t.Errorf("database: got %q, want %q", got.Database, "disconnected")
	}
	if got.Error == "" {
		t.Error("expected error detail")
	}
}

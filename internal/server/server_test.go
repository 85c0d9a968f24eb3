package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Dhreetiman/product-management/internal/config"
	"github.com/Dhreetiman/product-management/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:      8080,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MetricsEnabled:  true,
		StoreBackend:    "memory",
	}
}

func TestNew(t *testing.T) {
	// Act
	srv := New(testConfig(), zap.NewNop(), store.NewMemoryStore())

	// Assert
	if srv == nil {
		t.Fatal("New() returned nil")
	}
	if srv.Router() == nil {
		t.Error("Router() should not be nil")
	}
	if srv.httpServer == nil {
		t.Error("httpServer should be configured")
	}
	if srv.httpServer.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", srv.httpServer.Addr)
	}
}

func TestServer_RoutesRegistered(t *testing.T) {
	// Arrange
	srv := New(testConfig(), zap.NewNop(), store.NewMemoryStore())

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, target: "/health", wantStatus: http.StatusOK},
		{name: "fetch list", method: http.MethodGet, target: "/item/fetch", wantStatus: http.StatusOK},
		{name: "fetch unknown id", method: http.MethodGet, target: "/item/fetch/nope", wantStatus: http.StatusNotFound},
		{name: "delete unknown id", method: http.MethodDelete, target: "/item/delete/nope", wantStatus: http.StatusNotFound},
		{name: "metrics", method: http.MethodGet, target: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, target: "/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, target: "/item/add", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rr := httptest.NewRecorder()
			srv.Router().ServeHTTP(rr, req)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.MetricsEnabled = false
	srv := New(cfg, zap.NewNop(), store.NewMemoryStore())

	// Act
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestServer_EnvelopeOnNotFoundRoute(t *testing.T) {
	// Arrange
	srv := New(testConfig(), zap.NewNop(), store.NewMemoryStore())

	// Act
	req := httptest.NewRequest(http.MethodGet, "/item/fetch/no-such-id", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	// Assert
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.Success {
		t.Error("success should be false")
	}
	if env.Message != "Item not found" {
		t.Errorf("message = %q, want %q", env.Message, "Item not found")
	}
}

package main

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/Dhreetiman/product-management/internal/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "debug level", level: "debug"},
		{name: "info level", level: "info"},
		{name: "warn level", level: "warn"},
		{name: "error level", level: "error"},
		{name: "unknown level falls back to info", level: "chatty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("initLogger() returned nil logger")
			}
			_ = logger.Sync()
		})
	}
}

func TestCreateStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		wantErr bool
	}{
		{
			name: "file backend",
			cfg: &config.Config{
				StoreBackend: "file",
				DataFile:     filepath.Join(t.TempDir(), "data.json"),
			},
			wantErr: false,
		},
		{
			name:    "memory backend",
			cfg:     &config.Config{StoreBackend: "memory"},
			wantErr: false,
		},
		{
			name:    "unknown backend",
			cfg:     &config.Config{StoreBackend: "postgres"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			itemStore, err := createStore(tt.cfg, zap.NewNop())

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Error("createStore() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("createStore() unexpected error: %v", err)
			}
			if itemStore == nil {
				t.Error("createStore() returned nil store")
			}
		})
	}
}

func TestCreateStore_FileBackendBadPath(t *testing.T) {
	// Arrange
	cfg := &config.Config{
		StoreBackend: "file",
		DataFile:     filepath.Join(t.TempDir(), "missing-dir", "data.json"),
	}

	// Act
	_, err := createStore(cfg, zap.NewNop())

	// Assert
	if err == nil {
		t.Error("createStore() should fail when the data file cannot be created")
	}
}

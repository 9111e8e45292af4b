package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{"PORT", "DB_PATH", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT", "STORE"}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port: expected 8080, got %d", cfg.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr: expected :8080, got %s", cfg.Addr())
	}
	if cfg.DBPath != "./data/ledger.db" {
		t.Errorf("DBPath: got %s", cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: expected info, got %v", cfg.LogLevel)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("ShutdownTimeout: got %v", cfg.ShutdownTimeout)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store: got %s", cfg.Store)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, http://localhost:8080,")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("STORE", "memory")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port: expected 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: expected debug, got %v", cfg.LogLevel)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:8080" {
		t.Errorf("AllowedOrigins: got %v", cfg.AllowedOrigins)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout: got %v", cfg.ShutdownTimeout)
	}
	if cfg.Store != StoreMemory {
		t.Errorf("Store: got %s", cfg.Store)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=6000\nDB_PATH=/tmp/from-file.db\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port: environment should win over file, got %d", cfg.Port)
	}
	if cfg.DBPath != "/tmp/from-file.db" {
		t.Errorf("DBPath: expected value from file, got %s", cfg.DBPath)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "eighty"},
		{"PORT", "70000"},
		{"LOG_LEVEL", "loud"},
		{"SHUTDOWN_TIMEOUT", "soon"},
		{"STORE", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

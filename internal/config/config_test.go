package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("default backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLitePath == "" {
		t.Error("expected a default sqlite path")
	}
	if cfg.GatewayTimeout() != 60*time.Second {
		t.Errorf("default gateway timeout = %v", cfg.GatewayTimeout())
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_GATEWAY_KEY", "sk-secret")
	path := writeConfig(t, "gateway:\n  api_key: ${TEST_GATEWAY_KEY}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.APIKey != "sk-secret" {
		t.Errorf("api key = %q, want expanded env value", cfg.Gateway.APIKey)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: cassandra\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown storage backend")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SELLERDESK_UPSTREAM_URL", "https://api.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}

	// Without an explicit path a missing file is fine.
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("storage type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Sessions.TTL != 40*time.Minute {
		t.Errorf("session ttl = %s, want 40m", cfg.Sessions.TTL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  port: 9090
upstream:
  base_url: https://api.example
  timeout: 10s
storage:
  type: sqlite
  sqlite:
    path: /var/lib/sellerdesk.db
sessions:
  type: redis
  url: redis://localhost:6379/0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("upstream timeout = %s, want 10s", cfg.Upstream.Timeout)
	}
	if cfg.Storage.SQLite.Path != "/var/lib/sellerdesk.db" {
		t.Errorf("sqlite path = %q", cfg.Storage.SQLite.Path)
	}
	if cfg.Sessions.Type != "redis" {
		t.Errorf("sessions type = %q, want redis", cfg.Sessions.Type)
	}
	// Defaults survive for fields the file does not set.
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout = %s, want default 30s", cfg.Server.ShutdownTimeout)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SELLERDESK_UPSTREAM_URL", "https://api.example")
	t.Setenv("SELLERDESK_PORT", "7070")
	t.Setenv("SELLERDESK_STORAGE", "sqlite")
	t.Setenv("SELLERDESK_API_KEYS", "alpha, beta")
	t.Setenv("SELLERDESK_AUTH_TYPE", "apikey")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("storage type = %q, want sqlite", cfg.Storage.Type)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0].Key != "alpha" || cfg.Auth.APIKeys[1].Key != "beta" {
		t.Errorf("api keys = %+v", cfg.Auth.APIKeys)
	}
}

func TestFileReferenceResolution(t *testing.T) {
	dir := t.TempDir()
	secret := writeFile(t, dir, "dsn", "postgres://u:p@localhost/db\n")
	path := writeFile(t, dir, "config.yaml", `
upstream:
  base_url: https://api.example
storage:
  type: postgres
  postgres:
    dsn_file: `+secret+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Postgres.DSN != "postgres://u:p@localhost/db" {
		t.Errorf("dsn = %q, want file content trimmed", cfg.Storage.Postgres.DSN)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing upstream url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "" },
			wantErr: "upstream.base_url",
		},
		{
			name:    "bad storage type",
			mutate:  func(c *Config) { c.Storage.Type = "etcd" },
			wantErr: "storage.type",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Storage.Type = "postgres" },
			wantErr: "storage.postgres.dsn",
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.Sessions.Type = "redis" },
			wantErr: "sessions.url",
		},
		{
			name:    "apikey without keys",
			mutate:  func(c *Config) { c.Auth.Type = "apikey" },
			wantErr: "auth.api_keys",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Upstream.BaseURL = "https://api.example"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

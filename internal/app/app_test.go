package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("ADDR", "")
	t.Setenv("TOKEN_PATH", filepath.Join(t.TempDir(), "token"))
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("BLOGCLIENT_CONFIG", "")

	cfg := LoadConfig()
	if cfg.APIBaseURL != "http://localhost:3001" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadConfigEnvWins(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("ADDR", ":9999")
	t.Setenv("TOKEN_PATH", filepath.Join(t.TempDir(), "token"))
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	t.Setenv("BLOGCLIENT_CONFIG", "")

	cfg := LoadConfig()
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestYAMLFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "addr: \":7777\"\napi_base_url: https://override.example.com\nrequest_timeout: 30s\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ENV", "development")
	t.Setenv("API_BASE_URL", "http://from-env")
	t.Setenv("ADDR", "")
	t.Setenv("TOKEN_PATH", filepath.Join(dir, "token"))
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("BLOGCLIENT_CONFIG", path)

	cfg := LoadConfig()
	if cfg.APIBaseURL != "https://override.example.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.Addr != ":7777" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

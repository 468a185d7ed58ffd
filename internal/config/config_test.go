package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", cfg.Server.Port)
	}
	if cfg.LastFM.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.LastFM.Timeout)
	}
	if cfg.Resolver.FuzzyCutoff != 0.6 {
		t.Errorf("expected cutoff 0.6, got %v", cfg.Resolver.FuzzyCutoff)
	}
	if cfg.Data.GraphPath != DefaultGraphFile {
		t.Errorf("expected graph path %q, got %q", DefaultGraphFile, cfg.Data.GraphPath)
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_origins: ["http://localhost:3000"]
  content_security_policy: "default-src 'self'"
data:
  dir: /srv/songscape
  graph_path: /tmp/graph.graphml
lastfm:
  api_key: " abc "
  base_url: http://lastfm.test/2.0/
  timeout: 2s
recommend:
  top_n: 8
logging:
  level: debug
  format: text
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.ContentSecurityPolicy != "default-src 'self'" {
		t.Errorf("csp = %q", cfg.Server.ContentSecurityPolicy)
	}
	if cfg.LastFM.APIKey != "abc" {
		t.Errorf("api key not trimmed: %q", cfg.LastFM.APIKey)
	}
	if cfg.LastFM.BaseURL != "http://lastfm.test/2.0" {
		t.Errorf("base url = %q", cfg.LastFM.BaseURL)
	}
	if cfg.LastFM.Timeout != 2*time.Second {
		t.Errorf("timeout = %s", cfg.LastFM.Timeout)
	}
	if cfg.Recommend.TopN != 8 {
		t.Errorf("top_n = %d", cfg.Recommend.TopN)
	}
	if want := filepath.Join("/srv/songscape", DefaultMetadataFile); cfg.Data.MetadataPath != want {
		t.Errorf("metadata path = %q, want %q", cfg.Data.MetadataPath, want)
	}
	if cfg.Data.GraphPath != "/tmp/graph.graphml" {
		t.Errorf("graph path = %q", cfg.Data.GraphPath)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("SONGSCAPE_PORT", "7070")
	t.Setenv("LASTFM_API_KEY", "legacy")
	t.Setenv("SONGSCAPE_LASTFM_API_KEY", "preferred")
	t.Setenv("SONGSCAPE_LASTFM_TIMEOUT", "1500ms")
	t.Setenv("SONGSCAPE_CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SONGSCAPE_CSP", "default-src 'none'")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.LastFM.APIKey != "preferred" {
		t.Errorf("api key = %q, want preferred", cfg.LastFM.APIKey)
	}
	if cfg.LastFM.Timeout != 1500*time.Millisecond {
		t.Errorf("timeout = %s", cfg.LastFM.Timeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.ContentSecurityPolicy != "default-src 'none'" {
		t.Errorf("csp = %q", cfg.Server.ContentSecurityPolicy)
	}
}

func TestLoad_LegacyAPIKeyEnv(t *testing.T) {
	t.Setenv("LASTFM_API_KEY", "legacy")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LastFM.APIKey != "legacy" {
		t.Errorf("api key = %q, want legacy", cfg.LastFM.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"port", "server:\n  port: 70000\n", "Port"},
		{"cutoff", "resolver:\n  fuzzy_cutoff: 1.5\n", "FuzzyCutoff"},
		{"top_n", "recommend:\n  top_n: 0\n", "TopN"},
		{"timeout", "lastfm:\n  timeout: 0s\n", "Timeout"},
		{"level", "logging:\n  level: trace\n", "Level"},
		{"yaml", "server: [", "loading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SONGSCAPE_PORT", "eighty")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { changes <- c }, logger)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewriting config: %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v", err)
	}
}

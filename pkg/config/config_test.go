package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/kirchhoff/pkg/errors"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Precision != DefaultPrecision {
		t.Errorf("Precision = %d, want %d", cfg.Precision, DefaultPrecision)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Simulate.Samples != 201 || cfg.Simulate.Duration != 10 {
		t.Errorf("Simulate = %+v", cfg.Simulate)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadFromXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	dir := filepath.Join(home, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := `
precision = 5

[cache]
redis_url = "redis://localhost:6379/1"
ttl = "36h"

[render]
format = "png"
detailed = true

[server]
addr = ":9090"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Precision != 5 {
		t.Errorf("Precision = %d, want 5", cfg.Precision)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	if time.Duration(cfg.Cache.TTL) != 36*time.Hour {
		t.Errorf("TTL = %v, want 36h", time.Duration(cfg.Cache.TTL))
	}
	if cfg.Render.Format != "png" || !cfg.Render.Detailed {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.MongoDatabase != AppName {
		t.Errorf("MongoDatabase = %q, want %q", cfg.Server.MongoDatabase, AppName)
	}
	if cfg.Simulate.Samples != 201 {
		t.Errorf("Samples = %d, want 201", cfg.Simulate.Samples)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"unknown section key", "[cache]\nsize = 3\n"},
		{"bad precision", "precision = 40\n"},
		{"bad format", "[render]\nformat = \"gif\"\n"},
		{"bad samples", "[simulate]\nsamples = 1\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"syntax", "precision = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.body)); err == nil {
				t.Error("Decode() succeeded, want error")
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Precision = 6
	cfg.Cache.TTL = Duration(2 * time.Hour)
	cfg.Render.Detailed = true

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, buf.String())
	}
	if *got != *cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestCacheDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	cfg := Default()
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(base, AppName); dir != want {
		t.Errorf("CacheDir() = %q, want %q", dir, want)
	}

	cfg.Cache.Dir = "/srv/cache"
	if dir, _ := cfg.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() = %q, want configured dir", dir)
	}
}

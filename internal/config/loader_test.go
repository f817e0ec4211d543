package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeYAMLConfig(t *testing.T, settings map[string]interface{}) string {
	t.Helper()
	data, err := yaml.Marshal(settings)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--target", "http://localhost:8080"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Protocol != ProtocolHTTP {
		t.Errorf("protocol = %q, want http", cfg.Protocol)
	}
	if cfg.Method != "GET" {
		t.Errorf("method = %q, want GET", cfg.Method)
	}
	if cfg.Total != 100 || cfg.Concurrency != 10 {
		t.Errorf("total=%d concurrency=%d, want defaults 100/10", cfg.Total, cfg.Concurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.KeyPrefix != "key" || cfg.KeyRange != 1000 {
		t.Errorf("key prefix/range = %q/%d, want key/1000", cfg.KeyPrefix, cfg.KeyRange)
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := writeYAMLConfig(t, map[string]interface{}{
		"target":      "localhost:6379",
		"protocol":    "flashkv",
		"total":       500,
		"concurrency": 25,
		"timeout":     "5s",
		"commands":    []string{"PING", "GET alpha"},
		"random_keys": true,
		"key_prefix":  "bench",
		"key_range":   200,
	})

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Protocol != ProtocolFlashKV {
		t.Errorf("protocol = %q", cfg.Protocol)
	}
	if cfg.Target != "localhost:6379" {
		t.Errorf("target = %q", cfg.Target)
	}
	if cfg.Total != 500 || cfg.Concurrency != 25 {
		t.Errorf("total=%d concurrency=%d", cfg.Total, cfg.Concurrency)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if len(cfg.Commands) != 2 || cfg.Commands[1] != "GET alpha" {
		t.Errorf("commands = %v", cfg.Commands)
	}
	if !cfg.RandomKeys || cfg.KeyPrefix != "bench" || cfg.KeyRange != 200 {
		t.Errorf("random key settings = %v/%q/%d", cfg.RandomKeys, cfg.KeyPrefix, cfg.KeyRange)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := writeYAMLConfig(t, map[string]interface{}{
		"target":      "http://original:8080",
		"total":       100,
		"concurrency": 5,
	})

	cfg, err := NewLoader().Load([]string{
		"--config", path,
		"--target", "http://overridden:9090",
		"--total", "250",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target != "http://overridden:9090" {
		t.Errorf("target = %q, want flag value", cfg.Target)
	}
	if cfg.Total != 250 {
		t.Errorf("total = %d, want flag value 250", cfg.Total)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("concurrency = %d, want file value 5", cfg.Concurrency)
	}
}

func TestLoadParsesHeaders(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--target", "http://localhost:8080",
		"--header", "content-type=application/json",
		"--header", "x-request-id=abc123",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Headers["Content-Type"]; got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := cfg.Headers["X-Request-Id"]; got != "abc123" {
		t.Errorf("X-Request-Id = %q", got)
	}
}

func TestLoadRejectsMalformedHeader(t *testing.T) {
	_, err := NewLoader().Load([]string{
		"--target", "http://localhost:8080",
		"--header", "no-equals-sign",
	})
	if err == nil {
		t.Fatal("expected error for malformed header")
	}
}

func TestLoadTracingSection(t *testing.T) {
	path := writeYAMLConfig(t, map[string]interface{}{
		"target": "http://localhost:8080",
		"tracing": map[string]interface{}{
			"enable":      true,
			"endpoint":    "collector:4317",
			"protocol":    "grpc",
			"sample_rate": 0.5,
			"propagate":   false,
		},
	})

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Tracing.Enabled() {
		t.Error("tracing should be enabled")
	}
	if cfg.Tracing.Endpoint != "collector:4317" {
		t.Errorf("endpoint = %q", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("sample_rate = %g", cfg.Tracing.SampleRate)
	}
	if cfg.Tracing.ShouldPropagate() {
		t.Error("propagate=false in file must win over enable")
	}
}

func TestLoadHelpRequested(t *testing.T) {
	for _, args := range [][]string{nil, {"--help"}} {
		_, err := NewLoader().Load(args)
		if !errors.Is(err, ErrHelpRequested) {
			t.Errorf("Load(%v) error = %v, want ErrHelpRequested", args, err)
		}
	}
}

func TestLoadUppercasesMethod(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--target", "http://x", "--method", "post"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Method != "POST" {
		t.Errorf("method = %q, want POST", cfg.Method)
	}
}

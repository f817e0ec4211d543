package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/flashkv/flashload/internal/config"
	"github.com/flashkv/flashload/internal/httpclient"
)

func TestNewRequestBuilderRequiresTarget(t *testing.T) {
	_, err := httpclient.NewRequestBuilder(&config.Config{})
	if err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestNewRequestBuilderRejectsBadHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"empty key", map[string]string{"   ": "v"}},
		{"newline in key", map[string]string{"X-Bad\nKey": "v"}},
		{"newline in value", map[string]string{"X-Key": "bad\r\nvalue"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{Target: "http://localhost:8080", Headers: tc.headers}
			if _, err := httpclient.NewRequestBuilder(cfg); err == nil {
				t.Fatal("expected header validation error")
			}
		})
	}
}

func TestBuildCanonicalizesHeaders(t *testing.T) {
	cfg := &config.Config{
		Target:  "http://localhost:8080/path",
		Method:  "post",
		Headers: map[string]string{"content-type": "application/json"},
		Body:    `{"k":"v"}`,
	}
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("NewRequestBuilder: %v", err)
	}

	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if req.ContentLength != int64(len(cfg.Body)) {
		t.Errorf("ContentLength = %d, want %d", req.ContentLength, len(cfg.Body))
	}
}

func TestBuildDefaultsToGet(t *testing.T) {
	builder, err := httpclient.NewRequestBuilder(&config.Config{Target: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewRequestBuilder: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Method != http.MethodGet {
		t.Errorf("method = %q, want GET", req.Method)
	}
}

func TestBodySourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	payload := `{"hello":"world"}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source, err := httpclient.NewBodySource(&config.Config{Target: "http://x", BodyFile: path})
	if err != nil {
		t.Fatalf("NewBodySource: %v", err)
	}
	length, ok := source.ContentLength()
	if !ok || length != int64(len(payload)) {
		t.Fatalf("ContentLength = %d,%v", length, ok)
	}

	reader, err := source.NewReader()
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("body = %q, want %q", data, payload)
	}
}

func TestBodySourceRejectsBothInlineAndFile(t *testing.T) {
	cfg := &config.Config{Target: "http://x", Body: "inline", BodyFile: "somefile"}
	if _, err := httpclient.NewBodySource(cfg); err == nil {
		t.Fatal("expected error for both body sources")
	}
}

func TestBodySourceMissingFile(t *testing.T) {
	cfg := &config.Config{Target: "http://x", BodyFile: filepath.Join(t.TempDir(), "absent")}
	if _, err := httpclient.NewBodySource(cfg); err == nil {
		t.Fatal("expected error for missing body file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissing(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if fc != nil {
		t.Fatal("missing file should yield nil config")
	}

	if fc, err := LoadFile(""); err != nil || fc != nil {
		t.Fatalf("empty path should be a no-op, got %v, %v", fc, err)
	}
}

func TestLoadFileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler.yaml")
	content := `
store: otherstore
condition: Used
data_dir: /tmp/crawl-data
timeout_seconds: 30
delay_ms: 250
metrics_addr: ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	cfg := DefaultConfig()
	fc.Apply(cfg)

	if cfg.StoreName != "otherstore" {
		t.Errorf("store = %q", cfg.StoreName)
	}
	if cfg.Condition != "Used" {
		t.Errorf("condition = %q", cfg.Condition)
	}
	if cfg.DataDir != "/tmp/crawl-data" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Errorf("delay = %v", cfg.Delay)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("metrics addr = %q", cfg.MetricsAddr)
	}
	// Fields absent from the file keep their defaults.
	if cfg.LogDir != "logs" {
		t.Errorf("log dir = %q, want default", cfg.LogDir)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyNil(t *testing.T) {
	cfg := DefaultConfig()
	var fc *FileConfig
	fc.Apply(cfg) // must not panic
	if cfg.StoreName != "garlandcomputer" {
		t.Fatalf("store = %q, want default untouched", cfg.StoreName)
	}
}

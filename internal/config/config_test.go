package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Fields.Timestamp != "t" || cfg.Fields.Level != "level" ||
		cfg.Fields.Tag != "tag" || cfg.Fields.Message != "message" {
		t.Errorf("default field keys = %+v", cfg.Fields)
	}
	if cfg.Ingest.ChunkSize() != 64*1024 {
		t.Errorf("ChunkSize = %d, want 64KB", cfg.Ingest.ChunkSize())
	}
	if cfg.Ingest.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Ingest.PollInterval())
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	content := `
[fields]
timestamp = "ts"
level = "severity"

[ingest]
chunk_size_kb = 128
`
	path := filepath.Join(dir, "jlv", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fields.Timestamp != "ts" {
		t.Errorf("Timestamp = %q, want ts", cfg.Fields.Timestamp)
	}
	if cfg.Fields.Level != "severity" {
		t.Errorf("Level = %q, want severity", cfg.Fields.Level)
	}
	// Unset keys keep defaults
	if cfg.Fields.Tag != "tag" {
		t.Errorf("Tag = %q, want default", cfg.Fields.Tag)
	}
	if cfg.Ingest.ChunkSize() != 128*1024 {
		t.Errorf("ChunkSize = %d, want 128KB", cfg.Ingest.ChunkSize())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := DefaultConfig()
	cfg.Fields.Timestamp = "ts"
	cfg.Ingest.ChunkSizeKB = 32
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got := GetConfigPath(); got != filepath.Join(dir, "jlv", "config.toml") {
		t.Errorf("GetConfigPath = %q", got)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Fields.Timestamp != "ts" {
		t.Errorf("Timestamp = %q, want ts", loaded.Fields.Timestamp)
	}
	if loaded.Ingest.ChunkSize() != 32*1024 {
		t.Errorf("ChunkSize = %d, want 32KB", loaded.Ingest.ChunkSize())
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fields.Timestamp != "t" {
		t.Errorf("Timestamp = %q, want default", cfg.Fields.Timestamp)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Radius != 10 || cfg.ChunkSize != 16 || !cfg.EnableSaving {
		t.Errorf("defaults = radius %d size %d saving %v", cfg.Radius, cfg.ChunkSize, cfg.EnableSaving)
	}
	want := Batching{Reading: 20, Loading: 100, Generating: 20, Rendering: 20, Saving: 20}
	if cfg.Batching != want {
		t.Errorf("Batching = %+v, want %+v", cfg.Batching, want)
	}
	if got := cfg.TickInterval(); got != 50*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 50ms", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"radius_zero", func(c *Config) { c.Radius = 0 }, true},
		{"radius_negative", func(c *Config) { c.Radius = -1 }, false},
		{"size_zero", func(c *Config) { c.ChunkSize = 0 }, false},
		{"size_max", func(c *Config) { c.ChunkSize = 64 }, true},
		{"size_too_big", func(c *Config) { c.ChunkSize = 65 }, false},
		{"saving_cap_zero", func(c *Config) { c.Batching.Saving = 0 }, true},
		{"negative_cap", func(c *Config) { c.Batching.Rendering = -1 }, false},
		{"generating_cap_zero", func(c *Config) { c.Batching.Generating = 0 }, false},
		{"negative_saving_cap", func(c *Config) { c.Batching.Saving = -1 }, false},
		{"tick_rate_zero", func(c *Config) { c.TickRate = 0 }, false},
		{"unknown_backend", func(c *Config) { c.Storage.Backend = "s3" }, false},
		{"memory_without_dir", func(c *Config) { c.Storage.Backend = BackendMemory; c.Storage.Dir = "" }, true},
		{"file_without_dir", func(c *Config) { c.Storage.Dir = "" }, false},
		{"no_workers", func(c *Config) { c.Storage.SaveWorkers = 0 }, false},
		{"flat_generator", func(c *Config) { c.GeneratorType = GeneratorFlat }, true},
		{"unknown_generator", func(c *Config) { c.GeneratorType = "caves" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Radius != DefaultConfig().Radius {
		t.Errorf("Radius = %d, want default", cfg.Radius)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	data := []byte("radius: 4\nbatching:\n  saving: 0\nstorage:\n  backend: leveldb\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Radius != 4 {
		t.Errorf("Radius = %d, want 4", cfg.Radius)
	}
	if cfg.Batching.Saving != 0 {
		t.Errorf("Batching.Saving = %d, want 0", cfg.Batching.Saving)
	}
	if cfg.Batching.Loading != 100 {
		t.Errorf("Batching.Loading = %d, want default 100", cfg.Batching.Loading)
	}
	if cfg.Storage.Backend != BackendLevelDB || cfg.Storage.Dir != "./save" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("radius: [1,"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed YAML")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "engine.yaml")
	cfg := DefaultConfig()
	cfg.Seed = -99
	cfg.GeneratorType = GeneratorFlat
	cfg.Batching.Generating = 3

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load after Save = %+v, want %+v", got, cfg)
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radius = 2
	cfg.Seed = 7

	fromFile := DefaultConfig()
	fromFile.Radius = 12
	fromFile.Seed = 1
	fromFile.ChunkSize = 8
	fromFile.Batching.Reading = 5

	Merge(cfg, fromFile, map[string]bool{"radius": true})

	if cfg.Radius != 2 {
		t.Errorf("Radius = %d, want flag value 2", cfg.Radius)
	}
	if cfg.Seed != 1 {
		t.Errorf("Seed = %d, want file value 1", cfg.Seed)
	}
	if cfg.ChunkSize != 8 {
		t.Errorf("ChunkSize = %d, want file value 8", cfg.ChunkSize)
	}
	if cfg.Batching.Reading != 5 {
		t.Errorf("Batching.Reading = %d, want 5", cfg.Batching.Reading)
	}
}

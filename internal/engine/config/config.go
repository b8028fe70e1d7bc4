package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// Storage backends.
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Generator types.
const (
	GeneratorDefault = "default"
	GeneratorFlat    = "flat"
)

// Config holds the engine configuration. It is read once at startup and not
// changed afterwards.
type Config struct {
	Radius        int      `yaml:"radius" json:"radius"`         // streaming radius in chunks
	ChunkSize     int      `yaml:"chunk_size" json:"chunk_size"` // voxels per chunk edge
	EnableSaving  bool     `yaml:"enable_saving" json:"enable_saving"`
	Batching      Batching `yaml:"batching" json:"batching"`
	Storage       Storage  `yaml:"storage" json:"storage"`
	GeneratorType string   `yaml:"generator_type" json:"generator_type"` // "default" or "flat"
	Seed          int64    `yaml:"seed" json:"seed"`
	TickRate      int      `yaml:"tick_rate" json:"tick_rate"` // scheduler ticks per second
	LogLevel      string   `yaml:"log_level" json:"log_level"`
}

// Batching caps how many positions each pipeline phase advances per tick.
type Batching struct {
	Reading    int `yaml:"reading" json:"reading"`
	Loading    int `yaml:"loading" json:"loading"` // read and render cap while bulk loading
	Generating int `yaml:"generating" json:"generating"`
	Rendering  int `yaml:"rendering" json:"rendering"`
	Saving     int `yaml:"saving" json:"saving"` // 0 dispatches the whole queue as one batch
}

type Storage struct {
	Backend     string `yaml:"backend" json:"backend"`
	Dir         string `yaml:"dir" json:"dir"`
	SaveWorkers int    `yaml:"save_workers" json:"save_workers"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Radius:       10,
		ChunkSize:    16,
		EnableSaving: true,
		Batching: Batching{
			Reading:    20,
			Loading:    100,
			Generating: 20,
			Rendering:  20,
			Saving:     20,
		},
		Storage: Storage{
			Backend:     BackendFile,
			Dir:         "./save",
			SaveWorkers: 4,
		},
		GeneratorType: GeneratorDefault,
		TickRate:      20,
		LogLevel:      "info",
	}
}

// TickInterval returns the scheduler period.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	if c.Radius < 0 {
		errs = append(errs, fmt.Errorf("radius %d must not be negative", c.Radius))
	}
	if _, err := chunk.NewSize(c.ChunkSize); err != nil {
		errs = append(errs, fmt.Errorf("chunk_size: %w", err))
	}
	caps := map[string]int{
		"reading":    c.Batching.Reading,
		"loading":    c.Batching.Loading,
		"generating": c.Batching.Generating,
		"rendering":  c.Batching.Rendering,
	}
	for _, name := range []string{"reading", "loading", "generating", "rendering"} {
		if caps[name] < 1 {
			errs = append(errs, fmt.Errorf("batching.%s %d must be positive", name, caps[name]))
		}
	}
	if c.Batching.Saving < 0 {
		errs = append(errs, fmt.Errorf("batching.saving %d must not be negative", c.Batching.Saving))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate %d must be positive", c.TickRate))
	}
	switch c.Storage.Backend {
	case BackendFile, BackendLevelDB, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Dir == "" {
		errs = append(errs, errors.New("storage.dir required"))
	}
	if c.Storage.SaveWorkers < 1 {
		errs = append(errs, fmt.Errorf("storage.save_workers %d must be at least 1", c.Storage.SaveWorkers))
	}
	switch c.GeneratorType {
	case GeneratorDefault, GeneratorFlat:
	default:
		errs = append(errs, fmt.Errorf("unknown generator type %q", c.GeneratorType))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads a YAML config file on top of the defaults. A missing file yields
// the defaults and no error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML atomically using a temp file + rename.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["radius"] {
		cfg.Radius = fromFile.Radius
	}
	if !explicitFlags["chunk-size"] {
		cfg.ChunkSize = fromFile.ChunkSize
	}
	if !explicitFlags["saving"] {
		cfg.EnableSaving = fromFile.EnableSaving
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["backend"] {
		cfg.Storage.Backend = fromFile.Storage.Backend
	}
	if !explicitFlags["save-dir"] {
		cfg.Storage.Dir = fromFile.Storage.Dir
	}
	if !explicitFlags["save-workers"] {
		cfg.Storage.SaveWorkers = fromFile.Storage.SaveWorkers
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	// Batching has no flags.
	cfg.Batching = fromFile.Batching
}

package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// MetaFile is the world metadata file name inside the save directory.
const MetaFile = "world.yaml"

// ErrSizeMismatch means a world was saved with a different chunk size.
var ErrSizeMismatch = errors.New("chunk size does not match saved world")

// WorldMeta describes a save directory. Chunk files are only readable with
// the chunk size they were written with, so it is pinned here.
type WorldMeta struct {
	ID        string    `yaml:"id"`
	Seed      int64     `yaml:"seed"`
	ChunkSize int       `yaml:"chunk_size"`
	Generator string    `yaml:"generator"`
	Created   time.Time `yaml:"created"`
}

// OpenWorld reads <dir>/world.yaml, creating it from want when absent.
// The saved seed and generator win over want so a world keeps generating the
// same terrain; a different chunk size is an error.
func OpenWorld(dir string, want WorldMeta, log *slog.Logger) (*WorldMeta, error) {
	meta, err := ReadWorld(dir)
	if errors.Is(err, ErrNotFound) {
		return createWorld(dir, filepath.Join(dir, MetaFile), want, log)
	}
	if err != nil {
		return nil, err
	}
	if meta.ChunkSize != want.ChunkSize {
		return nil, fmt.Errorf("%w: saved %d, configured %d", ErrSizeMismatch, meta.ChunkSize, want.ChunkSize)
	}
	if meta.Seed != want.Seed || meta.Generator != want.Generator {
		log.Info("using saved world settings",
			"seed", meta.Seed, "generator", meta.Generator,
			"configured_seed", want.Seed, "configured_generator", want.Generator)
	}
	log.Info("opened world", "id", meta.ID, "dir", dir)
	return meta, nil
}

// ReadWorld reads and checks <dir>/world.yaml. It returns ErrNotFound when
// the directory holds no world.
func ReadWorld(dir string) (*WorldMeta, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read world meta: %w", err)
	}

	var meta WorldMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse world meta: %w", err)
	}
	if _, err := uuid.Parse(meta.ID); err != nil {
		return nil, fmt.Errorf("parse world id %q: %w", meta.ID, err)
	}
	if _, err := chunk.NewSize(meta.ChunkSize); err != nil {
		return nil, fmt.Errorf("parse world meta: %w", err)
	}
	return &meta, nil
}

func createWorld(dir, path string, want WorldMeta, log *slog.Logger) (*WorldMeta, error) {
	meta := want
	meta.ID = uuid.NewString()
	if meta.Created.IsZero() {
		meta.Created = time.Now().UTC().Truncate(time.Second)
	}

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return nil, fmt.Errorf("marshal world meta: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := atomicWrite(path, data); err != nil {
		return nil, fmt.Errorf("write world meta: %w", err)
	}
	log.Info("created world", "id", meta.ID, "seed", meta.Seed, "chunk_size", meta.ChunkSize)
	return &meta, nil
}

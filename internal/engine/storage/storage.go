// Package storage persists encoded chunks.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
)

// ErrNotFound is returned by Load when no chunk was ever saved at a position.
var ErrNotFound = errors.New("chunk not found")

// Record is one encoded chunk ready to be written.
type Record struct {
	Pos  chunk.Position
	Data []byte
}

// Store reads and writes encoded chunks. Load and Save may be called
// concurrently from different goroutines.
type Store interface {
	Load(ctx context.Context, pos chunk.Position) ([]byte, error)
	Save(ctx context.Context, records []Record) error
	Close() error
}

// SaveError reports the positions of a batch that were not written.
type SaveError struct {
	Failed []chunk.Position
	Err    error
}

func (e *SaveError) Error() string {
	names := make([]string, len(e.Failed))
	for i, p := range e.Failed {
		names[i] = p.String()
	}
	return fmt.Sprintf("save %d chunk(s) [%s]: %v", len(e.Failed), strings.Join(names, " "), e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Open returns the backend selected by cfg.
func Open(cfg config.Storage, log *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileStore(cfg.Dir, log)
	case config.BackendLevelDB:
		return NewLevelDBStore(cfg.Dir, log)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
)

// FileStore keeps one file per chunk under <dir>/chunks.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates a FileStore rooted at dir, creating subdirectories as
// needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	chunks := filepath.Join(dir, codec.Dir)
	if err := os.MkdirAll(chunks, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", chunks, err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

func (s *FileStore) path(pos chunk.Position) string {
	return filepath.Join(s.dir, filepath.FromSlash(codec.Path(pos)))
}

func (s *FileStore) Load(_ context.Context, pos chunk.Position) ([]byte, error) {
	data, err := os.ReadFile(s.path(pos))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read chunk %v: %w", pos, err)
	}
	return data, nil
}

// Save writes every record, continuing past individual failures.
func (s *FileStore) Save(ctx context.Context, records []Record) error {
	var failed []chunk.Position
	var errs []error
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			failed = append(failed, rec.Pos)
			errs = append(errs, err)
			continue
		}
		if err := atomicWrite(s.path(rec.Pos), rec.Data); err != nil {
			failed = append(failed, rec.Pos)
			errs = append(errs, fmt.Errorf("chunk %v: %w", rec.Pos, err))
		}
	}
	if len(failed) > 0 {
		return &SaveError{Failed: failed, Err: errors.Join(errs...)}
	}
	s.log.Debug("saved chunks", "count", len(records))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// atomicWrite writes data to a uniquely named temp file in the target
// directory and renames it over path.
func atomicWrite(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

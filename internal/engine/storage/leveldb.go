package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
)

// LevelDBStore keeps every chunk in one LevelDB database under
// <dir>/chunks.db, keyed by the chunk's file path.
type LevelDBStore struct {
	db  *leveldb.DB
	log *slog.Logger
}

func NewLevelDBStore(dir string, log *slog.Logger) (*LevelDBStore, error) {
	path := filepath.Join(dir, "chunks.db")
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	log.Info("opened chunk database", "path", path)
	return &LevelDBStore{db: db, log: log}, nil
}

func key(pos chunk.Position) []byte {
	return []byte(codec.Path(pos))
}

func (s *LevelDBStore) Load(_ context.Context, pos chunk.Position) ([]byte, error) {
	data, err := s.db.Get(key(pos), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chunk %v: %w", pos, err)
	}
	return data, nil
}

// Save writes records as a single batch, so either all or none land.
func (s *LevelDBStore) Save(ctx context.Context, records []Record) error {
	failAll := func(err error) error {
		failed := make([]chunk.Position, len(records))
		for i, rec := range records {
			failed[i] = rec.Pos
		}
		return &SaveError{Failed: failed, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return failAll(err)
	}

	batch := new(leveldb.Batch)
	for _, rec := range records {
		batch.Put(key(rec.Pos), rec.Data)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return failAll(fmt.Errorf("write batch: %w", err))
	}
	return nil
}

func (s *LevelDBStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close leveldb: %w", err)
	}
	return nil
}

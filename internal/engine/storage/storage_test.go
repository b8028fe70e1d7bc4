package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ldb, err := NewLevelDBStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewLevelDBStore: %v", err)
	}
	t.Cleanup(func() { ldb.Close() })
	return map[string]Store{
		"file":    fs,
		"leveldb": ldb,
		"memory":  NewMemoryStore(),
	}
}

func TestStoreMiss(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(context.Background(), chunk.Position{X: 1, Y: 2, Z: 3})
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("Load() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	c := chunk.New(4, chunk.Position{X: -1, Y: 0, Z: 2})
	c.Set(chunk.LocalPos{X: 1, Y: 1, Z: 1}, block.Stone)
	data := codec.Encode(c)

	other := chunk.Position{X: -1, Y: 0, Z: 3}

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(ctx, []Record{{Pos: c.Position(), Data: data}}); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load(ctx, c.Position())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Load() = %x, want %x", got, data)
			}
			if _, err := s.Load(ctx, other); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load(%v) error = %v, want ErrNotFound", other, err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	pos := chunk.Position{X: 5}
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, d := range [][]byte{{1, 2, 3}, {4}} {
				if err := s.Save(ctx, []Record{{Pos: pos, Data: d}}); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			got, err := s.Load(ctx, pos)
			if err != nil || !bytes.Equal(got, []byte{4}) {
				t.Errorf("Load() = %x, %v, want 04", got, err)
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	pos := chunk.Position{X: 3, Y: -4, Z: 5}
	if err := s.Save(context.Background(), []Record{{Pos: pos, Data: []byte{9}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chunks", "3_-4_5.mcra")); err != nil {
		t.Errorf("chunk file missing: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "chunks"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("chunks dir holds %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestFileStorePartialFailure(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	bad := chunk.Position{X: 1}
	// A directory in the way makes the rename fail for this position only.
	if err := os.MkdirAll(filepath.Join(dir, "chunks", "1_0_0.mcra", "x"), 0o755); err != nil {
		t.Fatal(err)
	}

	good := chunk.Position{X: 2}
	err = s.Save(context.Background(), []Record{
		{Pos: bad, Data: []byte{1}},
		{Pos: good, Data: []byte{2}},
	})
	var se *SaveError
	if !errors.As(err, &se) {
		t.Fatalf("Save() error = %v, want *SaveError", err)
	}
	if len(se.Failed) != 1 || se.Failed[0] != bad {
		t.Errorf("Failed = %v, want [%v]", se.Failed, bad)
	}
	if _, err := s.Load(context.Background(), good); err != nil {
		t.Errorf("good record not written: %v", err)
	}
}

func TestSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ldb, err := NewLevelDBStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer ldb.Close()

	recs := []Record{{Pos: chunk.Position{X: 1}, Data: []byte{1}}, {Pos: chunk.Position{X: 2}, Data: []byte{2}}}
	err = ldb.Save(ctx, recs)
	var se *SaveError
	if !errors.As(err, &se) || len(se.Failed) != 2 {
		t.Fatalf("Save() error = %v, want SaveError with 2 failures", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error does not wrap context.Canceled")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		ok      bool
	}{
		{config.BackendFile, "*storage.FileStore", true},
		{config.BackendLevelDB, "*storage.LevelDBStore", true},
		{config.BackendMemory, "*storage.MemoryStore", true},
		{"tape", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := Open(config.Storage{Backend: tt.backend, Dir: t.TempDir()}, testLogger())
			if (err == nil) != tt.ok {
				t.Fatalf("Open(%q) error = %v", tt.backend, err)
			}
			if err != nil {
				return
			}
			defer s.Close()
			switch s.(type) {
			case *FileStore, *LevelDBStore, *MemoryStore:
			default:
				t.Errorf("Open(%q) = %T, want %s", tt.backend, s, tt.want)
			}
		})
	}
}

func TestOpenWorldCreatesAndReopens(t *testing.T) {
	dir := t.TempDir()
	want := WorldMeta{Seed: 42, ChunkSize: 16, Generator: "default"}

	first, err := OpenWorld(dir, want, testLogger())
	if err != nil {
		t.Fatalf("OpenWorld: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("world id %q is not a uuid: %v", first.ID, err)
	}

	// A different seed in config must not change an existing world.
	second, err := OpenWorld(dir, WorldMeta{Seed: 7, ChunkSize: 16, Generator: "flat"}, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.ID != first.ID || second.Seed != 42 || second.Generator != "default" {
		t.Errorf("reopened meta = %+v, want %+v", second, first)
	}
}

func TestOpenWorldSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	if _, err := OpenWorld(dir, WorldMeta{ChunkSize: 16}, testLogger()); err != nil {
		t.Fatal(err)
	}
	_, err := OpenWorld(dir, WorldMeta{ChunkSize: 32}, testLogger())
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("OpenWorld() error = %v, want ErrSizeMismatch", err)
	}
}

func TestOpenWorldCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetaFile), []byte("id: not-a-uuid\nchunk_size: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWorld(dir, WorldMeta{ChunkSize: 16}, testLogger()); err == nil {
		t.Error("OpenWorld should reject an invalid world id")
	}
}

func TestReadWorld(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadWorld(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadWorld(empty) error = %v, want ErrNotFound", err)
	}
	created, err := OpenWorld(dir, WorldMeta{Seed: 3, ChunkSize: 8, Generator: "flat"}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadWorld(dir)
	if err != nil {
		t.Fatalf("ReadWorld() error = %v", err)
	}
	if got.ID != created.ID || got.ChunkSize != 8 || got.Seed != 3 {
		t.Errorf("ReadWorld() = %+v, want %+v", got, created)
	}

	bad := t.TempDir()
	meta := "id: " + created.ID + "\nchunk_size: 0\n"
	if err := os.WriteFile(filepath.Join(bad, MetaFile), []byte(meta), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWorld(bad); err == nil {
		t.Error("ReadWorld() accepted chunk_size 0")
	}
}

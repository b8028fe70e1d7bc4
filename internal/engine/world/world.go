// Package world edits voxels of loaded chunks and keeps their meshes in sync.
package world

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/mesh"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/scene"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
)

// ErrNotLoaded is returned when an edit targets a chunk that is not loaded.
var ErrNotLoaded = errors.New("chunk not loaded")

// Chunks looks up loaded chunks by position.
type Chunks interface {
	Chunk(pos chunk.Position) (*chunk.Chunk, bool)
	Size() chunk.Size
}

// World is a block-coordinate view over the loaded chunks. Like the loader it
// belongs to the scheduler goroutine.
type World struct {
	chunks   Chunks
	scene    *scene.Scene
	textures texture.Lookup
	reg      *block.Registry
	log      *slog.Logger
}

// New returns a World over chunks. A nil registry uses block.Default.
func New(chunks Chunks, sc *scene.Scene, textures texture.Lookup, reg *block.Registry, log *slog.Logger) *World {
	if reg == nil {
		reg = block.Default()
	}
	return &World{chunks: chunks, scene: sc, textures: textures, reg: reg, log: log}
}

// Block returns the state at world block coordinates. The second result is
// false when the containing chunk is not loaded.
func (w *World) Block(x, y, z int64) (block.State, bool) {
	pos, local := chunk.SplitWorld(x, y, z, w.chunks.Size())
	c, ok := w.chunks.Chunk(pos)
	if !ok {
		return block.Air, false
	}
	s, _ := c.Get(local)
	return s, true
}

// SetBlock stores s at world block coordinates and rebuilds the chunk mesh.
func (w *World) SetBlock(x, y, z int64, s block.State) error {
	pos, local := chunk.SplitWorld(x, y, z, w.chunks.Size())
	c, ok := w.chunks.Chunk(pos)
	if !ok {
		return fmt.Errorf("set block (%d,%d,%d): %w", x, y, z, ErrNotLoaded)
	}
	c.Set(local, s)

	e, ok := w.scene.Get(pos)
	if !ok || e.Chunk != c {
		return nil
	}
	st, _ := w.scene.Remesh(e, func() (*mesh.Mesh, mesh.BuildStats) {
		return mesh.Build(c, w.textures, w.reg)
	})
	w.log.Debug("block set", "x", x, "y", y, "z", z, "state", s, "faces", st.Faces)
	return nil
}

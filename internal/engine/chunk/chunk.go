package chunk

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
)

// Chunk holds the voxels of one grid cell. Position and size are fixed at
// creation; only the block store is mutable.
type Chunk struct {
	pos    Position
	size   Size
	blocks *SparseStore[block.State]
}

// New returns an all-air chunk.
func New(size Size, pos Position) *Chunk {
	return &Chunk{
		pos:    pos,
		size:   size,
		blocks: NewSparseStore(block.Air),
	}
}

// FromStore wraps an existing store. The caller gives up ownership of blocks.
func FromStore(size Size, pos Position, blocks *SparseStore[block.State]) *Chunk {
	return &Chunk{pos: pos, size: size, blocks: blocks}
}

func (c *Chunk) Position() Position {
	return c.pos
}

func (c *Chunk) Size() Size {
	return c.size
}

// Blocks exposes the underlying store for encoders and mesh builders.
func (c *Chunk) Blocks() *SparseStore[block.State] {
	return c.blocks
}

// Transform returns the world-space translation of the chunk, pos*size.
func (c *Chunk) Transform() mgl32.Vec3 {
	return c.pos.WorldCoord(c.size)
}

// Get returns the block at p. Positions outside the chunk read as air and
// report false.
func (c *Chunk) Get(p LocalPos) (block.State, bool) {
	if !p.In(c.size) {
		return block.Air, false
	}
	return c.blocks.Get(p.Index(c.size)), true
}

// Set stores s at p. It reports false and does nothing if p is outside the
// chunk.
func (c *Chunk) Set(p LocalPos, s block.State) bool {
	if !p.In(c.size) {
		return false
	}
	c.blocks.Set(p.Index(c.size), s)
	return true
}

// All yields every explicitly stored voxel with its local position.
func (c *Chunk) All() iter.Seq2[LocalPos, block.State] {
	return func(yield func(LocalPos, block.State) bool) {
		for i, s := range c.blocks.All() {
			if !yield(FromIndex(i, c.size), s) {
				return
			}
		}
	}
}

// Equal reports whether c and o have the same position, size and voxels.
func (c *Chunk) Equal(o *Chunk) bool {
	return c.pos == o.pos && c.size == o.size && c.blocks.Equal(o.blocks)
}

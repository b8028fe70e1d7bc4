package gen

import (
	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// FlatGenerator builds a fixed test pattern in chunks at Y=0: bedrock at
// local y=0, dirt y=1..3, an oak tree at (4, 4) and two ore markers in
// opposite corners at y=11. Every other chunk is air. Voxels that do not fit
// a small chunk are dropped.
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) Generate(size chunk.Size, pos chunk.Position) *chunk.Chunk {
	c := chunk.New(size, pos)
	if pos.Y != 0 {
		return c
	}
	n := size.Int()

	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			c.Set(chunk.LocalPos{X: x, Y: 0, Z: z}, block.Bedrock)
			for y := 1; y <= 3; y++ {
				c.Set(chunk.LocalPos{X: x, Y: y, Z: z}, block.Dirt)
			}
		}
	}

	const trunk = 4
	for y := 4; y < 10; y++ {
		c.Set(chunk.LocalPos{X: trunk, Y: y, Z: trunk}, block.OakLog)
	}
	canopy := []struct{ y, lo, hi int }{
		{7, 1, 8},
		{8, 2, 7},
		{9, 3, 6},
	}
	for _, layer := range canopy {
		for x := layer.lo; x < layer.hi; x++ {
			for z := layer.lo; z < layer.hi; z++ {
				if x == trunk && z == trunk {
					continue
				}
				c.Set(chunk.LocalPos{X: x, Y: layer.y, Z: z}, block.OakLeaves)
			}
		}
	}
	for x := 3; x < 6; x++ {
		for z := 3; z < 6; z++ {
			c.Set(chunk.LocalPos{X: x, Y: 10, Z: z}, block.OakLeaves)
		}
	}

	c.Set(chunk.LocalPos{X: 0, Y: 11, Z: 0}, block.DiamondOre)
	c.Set(chunk.LocalPos{X: n - 1, Y: 11, Z: n - 1}, block.IronOre)
	return c
}

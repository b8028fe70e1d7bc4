package gen

import (
	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

const (
	// BedrockY is the world Y of the single bedrock layer.
	BedrockY = -64
	// StoneCeiling is the exclusive upper world Y for stone.
	StoneCeiling = 50
)

// DefaultSurface is the fractal used for the terrain height field.
var DefaultSurface = FractalNoise{
	Freq:        0.007,
	Amplitude:   20,
	Octaves:     4,
	Persistence: 0.5,
}

// TerrainGenerator fills a bedrock floor and a stone body under a fractal
// height field. Voxels are addressed in world Y, so every cubic chunk in a
// column receives its own slice of the same terrain.
type TerrainGenerator struct {
	noise   *Simplex
	surface FractalNoise
}

func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		noise:   NewSimplex(seed),
		surface: DefaultSurface,
	}
}

// SurfaceAt returns the terrain height at world column (x, z).
func (g *TerrainGenerator) SurfaceAt(x, z int64) float64 {
	return g.surface.Sample(g.noise, float64(float32(x)), float64(float32(z)))
}

func (g *TerrainGenerator) Generate(size chunk.Size, pos chunk.Position) *chunk.Chunk {
	c := chunk.New(size, pos)
	ox, oy, oz := pos.BlockOrigin(size)
	n := int64(size)

	if oy+n <= BedrockY || oy >= StoneCeiling {
		return c
	}

	for x := int64(0); x < n; x++ {
		for z := int64(0); z < n; z++ {
			surface := g.SurfaceAt(ox+x, oz+z)
			for y := int64(0); y < n; y++ {
				wy := oy + y
				local := chunk.LocalPos{X: int(x), Y: int(y), Z: int(z)}
				switch {
				case wy == BedrockY:
					c.Set(local, block.Bedrock)
				case wy > BedrockY && wy < StoneCeiling && float64(wy) < surface:
					c.Set(local, block.Stone)
				}
			}
		}
	}
	return c
}

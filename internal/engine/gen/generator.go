package gen

import (
	"fmt"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// Generator names accepted by New.
const (
	TypeDefault = "default"
	TypeFlat    = "flat"
)

// Generator produces chunk contents deterministically. Implementations must
// be safe to call from multiple goroutines.
type Generator interface {
	Generate(size chunk.Size, pos chunk.Position) *chunk.Chunk
}

// New returns the generator registered under kind.
func New(kind string, seed int64) (Generator, error) {
	switch kind {
	case TypeDefault, "":
		return NewTerrainGenerator(seed), nil
	case TypeFlat:
		return NewFlatGenerator(), nil
	default:
		return nil, fmt.Errorf("unknown generator type %q", kind)
	}
}

package chunk

import (
	"fmt"
	"iter"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxSize is the largest supported chunk edge length.
const MaxSize = 64

// Size is the edge length of a chunk in voxels.
type Size uint8

// NewSize validates n as a chunk edge length.
func NewSize(n int) (Size, error) {
	if n <= 0 || n > MaxSize {
		return 0, fmt.Errorf("chunk size %d out of range [1,%d]", n, MaxSize)
	}
	return Size(n), nil
}

func (s Size) Int() int {
	return int(s)
}

// Volume returns the number of voxels in a chunk of this size.
func (s Size) Volume() int {
	n := int(s)
	return n * n * n
}

// Position identifies a chunk in chunk-grid space.
type Position struct {
	X, Y, Z int64
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

func (p Position) Add(o Position) Position {
	return Position{p.X + o.X, p.Y + o.Y, p.Z + o.Z}
}

// WorldCoord returns the world-space origin of the chunk.
func (p Position) WorldCoord(size Size) mgl32.Vec3 {
	s := float32(size)
	return mgl32.Vec3{float32(p.X) * s, float32(p.Y) * s, float32(p.Z) * s}
}

// BlockOrigin returns the world block coordinate of local (0,0,0).
func (p Position) BlockOrigin(size Size) (x, y, z int64) {
	s := int64(size)
	return p.X * s, p.Y * s, p.Z * s
}

// PositionOf returns the chunk containing the world-space point.
func PositionOf(world mgl32.Vec3, size Size) Position {
	s := float64(size)
	return Position{
		X: int64(math.Floor(float64(world.X()) / s)),
		Y: int64(math.Floor(float64(world.Y()) / s)),
		Z: int64(math.Floor(float64(world.Z()) / s)),
	}
}

// IterAround yields every position within radius of center on each axis,
// x varying fastest, then y, then z. A negative radius yields nothing.
func IterAround(center Position, radius int) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		if radius < 0 {
			return
		}
		r := int64(radius)
		for dz := -r; dz <= r; dz++ {
			for dy := -r; dy <= r; dy++ {
				for dx := -r; dx <= r; dx++ {
					if !yield(Position{center.X + dx, center.Y + dy, center.Z + dz}) {
						return
					}
				}
			}
		}
	}
}

// OutsideRadius reports whether any axis of p and other differ by more than
// radius. It is the exact complement of membership in IterAround.
func OutsideRadius(p, other Position, radius int) bool {
	if radius < 0 {
		return true
	}
	r := uint64(radius)
	return absDiff(p.X, other.X) > r ||
		absDiff(p.Y, other.Y) > r ||
		absDiff(p.Z, other.Z) > r
}

func absDiff(a, b int64) uint64 {
	if a > b {
		return uint64(a) - uint64(b)
	}
	return uint64(b) - uint64(a)
}

// LocalPos is a voxel coordinate inside a chunk, each axis in [0, size).
type LocalPos struct {
	X, Y, Z int
}

// Index flattens p as x*size² + y*size + z.
func (p LocalPos) Index(size Size) int {
	s := int(size)
	return p.X*s*s + p.Y*s + p.Z
}

// In reports whether p lies inside a chunk of the given size.
func (p LocalPos) In(size Size) bool {
	s := int(size)
	return p.X >= 0 && p.X < s && p.Y >= 0 && p.Y < s && p.Z >= 0 && p.Z < s
}

// Neighbor returns the adjacent position in direction d. The result may lie
// outside the chunk.
func (p LocalPos) Neighbor(d Direction) LocalPos {
	o := d.Offset()
	return LocalPos{p.X + o[0], p.Y + o[1], p.Z + o[2]}
}

// FromIndex is the inverse of LocalPos.Index.
func FromIndex(i int, size Size) LocalPos {
	s := int(size)
	return LocalPos{X: i / (s * s), Y: (i / s) % s, Z: i % s}
}

// SplitWorld converts a world block coordinate into the owning chunk and the
// local position inside it.
func SplitWorld(x, y, z int64, size Size) (Position, LocalPos) {
	s := int64(size)
	cx, lx := floorDivMod(x, s)
	cy, ly := floorDivMod(y, s)
	cz, lz := floorDivMod(z, s)
	return Position{cx, cy, cz}, LocalPos{int(lx), int(ly), int(lz)}
}

func floorDivMod(a, b int64) (int64, int64) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// MaxReach is the default ray length for Break and Place, in blocks.
const MaxReach = 5

// BlockPos is a world block coordinate.
type BlockPos struct {
	X, Y, Z int64
}

// Add returns p moved one block towards d.
func (p BlockPos) Add(d chunk.Direction) BlockPos {
	o := d.Offset()
	return BlockPos{p.X + int64(o[0]), p.Y + int64(o[1]), p.Z + int64(o[2])}
}

// Hit describes the first solid block a ray touched.
type Hit struct {
	Block BlockPos
	State block.State
	// Face is the side of Block the ray entered through.
	Face     chunk.Direction
	Distance float32
}

// Raycast walks the voxel grid from origin along dir and returns the first
// non-air block of a loaded chunk within maxDist. Unloaded chunks are
// treated as empty.
func (w *World) Raycast(origin, dir mgl32.Vec3, maxDist float32) (Hit, bool) {
	if dir.Len() == 0 {
		return Hit{}, false
	}
	dir = dir.Normalize()

	var (
		cell  [3]int64
		step  [3]int64
		tMax  [3]float64
		delta [3]float64
	)
	for i := 0; i < 3; i++ {
		o, d := float64(origin[i]), float64(dir[i])
		cell[i] = int64(math.Floor(o))
		switch {
		case d > 0:
			step[i] = 1
			delta[i] = 1 / d
			tMax[i] = (float64(cell[i]) + 1 - o) / d
		case d < 0:
			step[i] = -1
			delta[i] = -1 / d
			tMax[i] = (o - float64(cell[i])) / -d
		default:
			delta[i] = math.Inf(1)
			tMax[i] = math.Inf(1)
		}
	}

	face := entryFace(dir)
	dist := 0.0
	for dist <= float64(maxDist) {
		pos := BlockPos{cell[0], cell[1], cell[2]}
		if s, ok := w.Block(pos.X, pos.Y, pos.Z); ok && !s.IsAir() {
			return Hit{Block: pos, State: s, Face: face, Distance: float32(dist)}, true
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if math.IsInf(tMax[axis], 1) {
			break
		}
		cell[axis] += step[axis]
		dist = tMax[axis]
		tMax[axis] += delta[axis]
		face = faceEntered(axis, step[axis])
	}
	return Hit{}, false
}

// faceEntered is the side of a cell reached by stepping along axis.
func faceEntered(axis int, step int64) chunk.Direction {
	switch axis {
	case 0:
		if step > 0 {
			return chunk.West
		}
		return chunk.East
	case 1:
		if step > 0 {
			return chunk.Down
		}
		return chunk.Up
	default:
		if step > 0 {
			return chunk.North
		}
		return chunk.South
	}
}

// entryFace guesses the face for a ray that starts inside a solid block:
// the side facing back along the dominant axis of dir.
func entryFace(dir mgl32.Vec3) chunk.Direction {
	axis := 0
	for i := 1; i < 3; i++ {
		if abs32(dir[i]) > abs32(dir[axis]) {
			axis = i
		}
	}
	step := int64(1)
	if dir[axis] < 0 {
		step = -1
	}
	return faceEntered(axis, step)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

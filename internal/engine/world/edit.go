package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
)

// Break turns the first block along the ray into air.
func (w *World) Break(origin, dir mgl32.Vec3) (Hit, bool, error) {
	hit, ok := w.Raycast(origin, dir, MaxReach)
	if !ok {
		return Hit{}, false, nil
	}
	if err := w.SetBlock(hit.Block.X, hit.Block.Y, hit.Block.Z, block.Air); err != nil {
		return hit, false, err
	}
	return hit, true, nil
}

// Place puts s against the face of the first block along the ray. Nothing
// happens when that cell is already occupied or its chunk is not loaded.
func (w *World) Place(origin, dir mgl32.Vec3, s block.State) (BlockPos, bool, error) {
	hit, ok := w.Raycast(origin, dir, MaxReach)
	if !ok {
		return BlockPos{}, false, nil
	}
	target := hit.Block.Add(hit.Face)
	cur, loaded := w.Block(target.X, target.Y, target.Z)
	if !loaded || !cur.IsAir() {
		return target, false, nil
	}
	if err := w.SetBlock(target.X, target.Y, target.Z, s); err != nil {
		return target, false, err
	}
	return target, true, nil
}

// EditKind selects what an Edit does.
type EditKind uint8

const (
	EditSet EditKind = iota
	EditBreak
	EditPlace
)

func (k EditKind) String() string {
	switch k {
	case EditSet:
		return "set"
	case EditBreak:
		return "break"
	case EditPlace:
		return "place"
	default:
		return fmt.Sprintf("edit(%d)", uint8(k))
	}
}

// Edit is a queued change. Set uses Pos; Break and Place cast a ray from
// Origin along Dir.
type Edit struct {
	Kind   EditKind
	Pos    BlockPos
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
	State  block.State
}

// Apply performs e.
func (w *World) Apply(e Edit) error {
	switch e.Kind {
	case EditSet:
		return w.SetBlock(e.Pos.X, e.Pos.Y, e.Pos.Z, e.State)
	case EditBreak:
		_, _, err := w.Break(e.Origin, e.Dir)
		return err
	case EditPlace:
		_, _, err := w.Place(e.Origin, e.Dir, e.State)
		return err
	default:
		return fmt.Errorf("apply edit: unknown kind %v", e.Kind)
	}
}

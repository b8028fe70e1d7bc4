// Package mesh turns chunk voxels into renderable triangle buffers.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
)

// Mesh holds parallel vertex attribute buffers and a triangle index list.
// Positions are in chunk-local space; apply the chunk transform to place it.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Colors    []mgl32.Vec4
	Indices   []uint32
}

// Faces returns the number of quads in the mesh.
func (m *Mesh) Faces() int {
	return len(m.Positions) / 4
}

// BuildStats summarises one mesh build.
type BuildStats struct {
	Faces int
	// Skipped counts solid voxels left out because their texture was missing.
	Skipped int
}

// corner is one quad vertex: an offset from the voxel origin and which UV
// bounds it takes on each axis.
type corner struct {
	offset     [3]float32
	maxU, maxV bool
}

var quads = [6][4]corner{
	chunk.Down: {
		{[3]float32{1, 0, 0}, false, false},
		{[3]float32{0, 0, 0}, false, true},
		{[3]float32{0, 0, 1}, true, true},
		{[3]float32{1, 0, 1}, true, false},
	},
	chunk.Up: {
		{[3]float32{0, 1, 0}, false, true},
		{[3]float32{1, 1, 0}, false, false},
		{[3]float32{1, 1, 1}, true, false},
		{[3]float32{0, 1, 1}, true, true},
	},
	chunk.North: {
		{[3]float32{1, 1, 0}, false, false},
		{[3]float32{0, 1, 0}, true, false},
		{[3]float32{0, 0, 0}, true, true},
		{[3]float32{1, 0, 0}, false, true},
	},
	chunk.South: {
		{[3]float32{0, 0, 1}, true, true},
		{[3]float32{0, 1, 1}, true, false},
		{[3]float32{1, 1, 1}, false, false},
		{[3]float32{1, 0, 1}, false, true},
	},
	chunk.West: {
		{[3]float32{0, 1, 1}, true, false},
		{[3]float32{0, 0, 1}, true, true},
		{[3]float32{0, 0, 0}, false, true},
		{[3]float32{0, 1, 0}, false, false},
	},
	chunk.East: {
		{[3]float32{1, 0, 0}, false, true},
		{[3]float32{1, 0, 1}, true, true},
		{[3]float32{1, 1, 1}, true, false},
		{[3]float32{1, 1, 0}, false, false},
	},
}

// quadIndices splits a quad into two triangles.
var quadIndices = [6]uint32{0, 3, 1, 1, 3, 2}

// Build meshes every explicitly stored solid voxel of c. A face is emitted
// when its neighbour lies outside the chunk or does not occlude. A nil
// registry uses block.Default.
func Build(c *chunk.Chunk, textures texture.Lookup, reg *block.Registry) (*Mesh, BuildStats) {
	m := &Mesh{}
	st := m.fill(c, textures, reg)
	return m, st
}

func (m *Mesh) fill(c *chunk.Chunk, textures texture.Lookup, reg *block.Registry) BuildStats {
	if reg == nil {
		reg = block.Default()
	}
	var st BuildStats
	for pos, s := range c.All() {
		if s.IsAir() {
			continue
		}
		uv, ok := textures.UVRect(s)
		if !ok {
			st.Skipped++
			continue
		}
		tint := reg.Tint(s)
		for _, d := range chunk.Directions {
			if !exposed(c, reg, pos, d) {
				continue
			}
			m.pushQuad(pos, d, uv, tint)
			st.Faces++
		}
	}
	return st
}

func exposed(c *chunk.Chunk, reg *block.Registry, pos chunk.LocalPos, d chunk.Direction) bool {
	n, inside := c.Get(pos.Neighbor(d))
	if !inside {
		return true
	}
	return n.IsAir() || !reg.CanOcclude(n)
}

func (m *Mesh) pushQuad(pos chunk.LocalPos, d chunk.Direction, uv texture.Rect, tint mgl32.Vec4) {
	base := uint32(len(m.Positions))
	for _, i := range quadIndices {
		m.Indices = append(m.Indices, base+i)
	}

	origin := mgl32.Vec3{float32(pos.X), float32(pos.Y), float32(pos.Z)}
	normal := d.Normal()
	for _, cn := range quads[d] {
		u, v := uv.Min.X(), uv.Min.Y()
		if cn.maxU {
			u = uv.Max.X()
		}
		if cn.maxV {
			v = uv.Max.Y()
		}
		m.Positions = append(m.Positions, origin.Add(mgl32.Vec3(cn.offset)))
		m.Normals = append(m.Normals, normal)
		m.UVs = append(m.UVs, mgl32.Vec2{u, v})
		m.Colors = append(m.Colors, tint)
	}
}

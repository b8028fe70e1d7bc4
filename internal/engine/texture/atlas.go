// Package texture maps block states to regions of a texture atlas.
package texture

import (
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
)

// Rect is a region of the atlas in normalised [0,1] UV space.
type Rect struct {
	Min, Max mgl32.Vec2
}

// Lookup resolves the atlas region for a block state. It reports false when
// the state has no texture or textures are not loaded yet.
type Lookup interface {
	UVRect(s block.State) (Rect, bool)
}

// Atlas is a Lookup over pixel rectangles packed into one image. It answers
// nothing until Finish is called, mirroring an atlas still being built.
type Atlas struct {
	mu     sync.RWMutex
	width  int
	height int
	tiles  map[block.State]image.Rectangle
	ready  bool
}

// NewAtlas returns an empty, unfinished atlas of the given pixel size.
func NewAtlas(width, height int) *Atlas {
	return &Atlas{
		width:  width,
		height: height,
		tiles:  make(map[block.State]image.Rectangle),
	}
}

// NewGridAtlas lays every non-air block of reg out in square tiles, cols per
// row, and returns the finished atlas.
func NewGridAtlas(reg *block.Registry, tile, cols int) *Atlas {
	var states []block.State
	for _, info := range reg.All() {
		if !info.ID.IsAir() {
			states = append(states, info.ID)
		}
	}
	rows := (len(states) + cols - 1) / cols
	a := NewAtlas(cols*tile, max(rows, 1)*tile)
	for i, s := range states {
		x, y := (i%cols)*tile, (i/cols)*tile
		a.Add(s, image.Rect(x, y, x+tile, y+tile))
	}
	a.Finish()
	return a
}

// Add places s at the pixel rectangle r.
func (a *Atlas) Add(s block.State, r image.Rectangle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tiles[s] = r
}

// Finish marks the atlas as loaded.
func (a *Atlas) Finish() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ready = true
}

func (a *Atlas) Ready() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ready
}

func (a *Atlas) UVRect(s block.State) (Rect, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.ready {
		return Rect{}, false
	}
	r, ok := a.tiles[s]
	if !ok {
		return Rect{}, false
	}
	w, h := float32(a.width), float32(a.height)
	return Rect{
		Min: mgl32.Vec2{float32(r.Min.X) / w, float32(r.Min.Y) / h},
		Max: mgl32.Vec2{float32(r.Max.X) / w, float32(r.Max.Y) / h},
	}, true
}

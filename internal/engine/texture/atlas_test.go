package texture

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
)

func TestAtlasNotReady(t *testing.T) {
	a := NewAtlas(64, 64)
	a.Add(block.Stone, image.Rect(0, 0, 16, 16))
	if _, ok := a.UVRect(block.Stone); ok {
		t.Error("UVRect before Finish should report false")
	}
	a.Finish()
	if _, ok := a.UVRect(block.Stone); !ok {
		t.Error("UVRect after Finish should report true")
	}
}

func TestAtlasNormalised(t *testing.T) {
	a := NewAtlas(64, 32)
	a.Add(block.Dirt, image.Rect(16, 16, 32, 32))
	a.Finish()

	got, ok := a.UVRect(block.Dirt)
	if !ok {
		t.Fatal("UVRect(dirt) missing")
	}
	want := Rect{Min: mgl32.Vec2{0.25, 0.5}, Max: mgl32.Vec2{0.5, 1}}
	if got != want {
		t.Errorf("UVRect(dirt) = %v, want %v", got, want)
	}
	if _, ok := a.UVRect(block.Glass); ok {
		t.Error("UVRect(glass) should be missing")
	}
}

func TestGridAtlas(t *testing.T) {
	reg := block.Default()
	a := NewGridAtlas(reg, 16, 4)
	if !a.Ready() {
		t.Fatal("grid atlas should be finished")
	}
	if _, ok := a.UVRect(block.Air); ok {
		t.Error("air should have no texture")
	}

	seen := make(map[Rect]block.State)
	for _, info := range reg.All() {
		if info.ID.IsAir() {
			continue
		}
		r, ok := a.UVRect(info.ID)
		if !ok {
			t.Errorf("UVRect(%v) missing", info.ID)
			continue
		}
		if r.Min.X() < 0 || r.Min.Y() < 0 || r.Max.X() > 1 || r.Max.Y() > 1 {
			t.Errorf("UVRect(%v) = %v outside [0,1]", info.ID, r)
		}
		if prev, dup := seen[r]; dup {
			t.Errorf("%v and %v share tile %v", prev, info.ID, r)
		}
		seen[r] = info.ID
	}
}

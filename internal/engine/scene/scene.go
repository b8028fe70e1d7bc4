// Package scene tracks the renderable entity spawned for each loaded chunk.
package scene

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/mesh"
)

// Entity is one chunk placed in the world with its mesh. Scene hands out
// copies; a mesh is never modified after it is attached, so a copy stays
// consistent while the scene moves on.
type Entity struct {
	ID        uint64
	Pos       chunk.Position
	Chunk     *chunk.Chunk
	Mesh      *mesh.Mesh
	Transform mgl32.Vec3
	// Revision increases every time Mesh is replaced by Remesh.
	Revision uint64
	// Stale is set while the mesh is missing faces because textures were
	// not available at build time.
	Stale bool
}

// Scene maps chunk positions to entities. Mutations happen on the scheduler
// goroutine; the lock lets a renderer take snapshots concurrently.
type Scene struct {
	mu       sync.RWMutex
	entities map[chunk.Position]*Entity
	nextID   atomic.Uint64
}

func New() *Scene {
	return &Scene{entities: make(map[chunk.Position]*Entity)}
}

// Spawn places c at its position, replacing any entity already there. The
// new entity always gets a fresh ID.
func (s *Scene) Spawn(c *chunk.Chunk, m *mesh.Mesh, st mesh.BuildStats) Entity {
	e := &Entity{
		ID:        s.nextID.Add(1),
		Pos:       c.Position(),
		Chunk:     c,
		Mesh:      m,
		Transform: c.Transform(),
		Stale:     st.Skipped > 0,
	}
	s.mu.Lock()
	s.entities[e.Pos] = e
	s.mu.Unlock()
	return *e
}

// Despawn removes the entity at pos and reports whether one existed.
func (s *Scene) Despawn(pos chunk.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[pos]; !ok {
		return false
	}
	delete(s.entities, pos)
	return true
}

func (s *Scene) Get(pos chunk.Position) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[pos]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// All returns a snapshot of every entity ordered by ID.
func (s *Scene) All() []Entity {
	s.mu.RLock()
	out := make([]Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, *e)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Entity) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Stale returns the entities whose meshes skipped voxels, oldest first.
func (s *Scene) Stale() []Entity {
	all := s.All()
	out := all[:0]
	for _, e := range all {
		if e.Stale {
			out = append(out, e)
		}
	}
	return out
}

// Remesh builds a replacement mesh for e and swaps it in. It reports false,
// without building, when e has since been despawned or superseded.
func (s *Scene) Remesh(e Entity, build func() (*mesh.Mesh, mesh.BuildStats)) (mesh.BuildStats, bool) {
	if !s.current(e) {
		return mesh.BuildStats{}, false
	}
	m, st := build()
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.entities[e.Pos]
	if !ok || live.ID != e.ID {
		return st, false
	}
	live.Mesh = m
	live.Stale = st.Skipped > 0
	live.Revision++
	return st, true
}

func (s *Scene) current(e Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	live, ok := s.entities[e.Pos]
	return ok && live.ID == e.ID
}

// Package loader streams chunks in and out of a cubic window around the
// camera. Every tracked position sits in exactly one of five collections:
//
//	unloaded -> reading -> rendering -> loaded
//	               \-> generating -/
//
// Positions leave loaded by eviction, optionally through the save queue.
// All methods must be called from the scheduler goroutine.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/mesh"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/scene"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/task"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
)

// Regime selects the batch caps used by a tick.
type Regime uint8

const (
	// BulkLoad fills the initial window with the larger Loading cap.
	BulkLoad Regime = iota
	Steady
)

func (r Regime) String() string {
	switch r {
	case BulkLoad:
		return "bulk-load"
	case Steady:
		return "steady"
	default:
		return fmt.Sprintf("regime(%d)", uint8(r))
	}
}

// Deps are the collaborators a Loader drives.
type Deps struct {
	Store     storage.Store
	Generator gen.Generator
	Textures  texture.Lookup
	Scene     *scene.Scene
	Registry  *block.Registry // nil means block.Default
}

type Loader struct {
	cfg  *config.Config
	size chunk.Size
	deps Deps
	log  *slog.Logger

	unloaded   *posSet
	reading    *ordered[*task.Task[*chunk.Chunk]]
	generating *posSet
	rendering  *ordered[*chunk.Chunk]
	loaded     *ordered[*chunk.Chunk]

	saves saver

	readWarn rate.Sometimes
}

// New returns a Loader with every collection empty. cfg must be valid.
func New(cfg *config.Config, deps Deps, log *slog.Logger) *Loader {
	if deps.Registry == nil {
		deps.Registry = block.Default()
	}
	pool := &errgroup.Group{}
	pool.SetLimit(cfg.Storage.SaveWorkers)
	return &Loader{
		cfg:        cfg,
		size:       chunk.Size(cfg.ChunkSize),
		deps:       deps,
		log:        log,
		unloaded:   newPosSet(),
		reading:    newOrdered[*task.Task[*chunk.Chunk]](),
		generating: newPosSet(),
		rendering:  newOrdered[*chunk.Chunk](),
		loaded:     newOrdered[*chunk.Chunk](),
		saves: saver{
			store:    deps.Store,
			pool:     pool,
			queue:    newOrdered[[]byte](),
			inflight: make(map[chunk.Position][]byte),
			attempts: make(map[chunk.Position]int),
			results:  make(chan saveResult, cfg.Storage.SaveWorkers),
			log:      log,
			warn:     rate.Sometimes{First: 3, Interval: 10 * time.Second},
		},
		readWarn: rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// Size returns the chunk edge length in voxels.
func (l *Loader) Size() chunk.Size {
	return l.size
}

// Tracked reports whether pos is in any of the five collections.
func (l *Loader) Tracked(pos chunk.Position) bool {
	return l.unloaded.Has(pos) || l.reading.Has(pos) || l.generating.Has(pos) ||
		l.rendering.Has(pos) || l.loaded.Has(pos)
}

// Chunk returns the loaded chunk at pos.
func (l *Loader) Chunk(pos chunk.Position) (*chunk.Chunk, bool) {
	return l.loaded.Get(pos)
}

// Settled reports whether nothing is waiting to become loaded.
func (l *Loader) Settled() bool {
	return l.unloaded.Len() == 0 && l.reading.Len() == 0 &&
		l.generating.Len() == 0 && l.rendering.Len() == 0
}

// Track marks every untracked position within the radius of center as
// unloaded. Calling it again with the same center changes nothing.
func (l *Loader) Track(center chunk.Position) int {
	added := 0
	for pos := range chunk.IterAround(center, l.cfg.Radius) {
		if l.Tracked(pos) {
			continue
		}
		l.unloaded.Set(pos, struct{}{})
		added++
	}
	if added > 0 {
		l.log.Debug("tracking chunks", "count", added, "center", center)
	}
	return added
}

func (l *Loader) readCap(r Regime) int {
	if r == BulkLoad {
		return l.cfg.Batching.Loading
	}
	return l.cfg.Batching.Reading
}

func (l *Loader) renderCap(r Regime) int {
	if r == BulkLoad {
		return l.cfg.Batching.Loading
	}
	return l.cfg.Batching.Rendering
}

// StartReads moves a batch of unloaded positions into reading and starts a
// background read for each. The batch tops reading up to the regime cap.
func (l *Loader) StartReads(ctx context.Context, r Regime) int {
	n := max(0, min(l.readCap(r), l.unloaded.Len())-l.reading.Len())
	batch := l.unloaded.Head(n)
	for _, pos := range batch {
		l.unloaded.Delete(pos)
		l.reading.Set(pos, l.read(ctx, pos))
	}
	return len(batch)
}

// read serves pos from bytes still waiting to be written when there are
// any, so a chunk that left and re-entered the window never comes back from
// an older file.
func (l *Loader) read(ctx context.Context, pos chunk.Position) *task.Task[*chunk.Chunk] {
	ctx = context.WithoutCancel(ctx)
	if data, ok := l.saves.pending(pos); ok {
		c, err := l.decode(data, pos)
		return task.Done(c, err)
	}
	store := l.deps.Store
	return task.Go(ctx, func(ctx context.Context) (*chunk.Chunk, error) {
		data, err := store.Load(ctx, pos)
		if err != nil {
			return nil, err
		}
		return l.decode(data, pos)
	})
}

func (l *Loader) decode(data []byte, pos chunk.Position) (*chunk.Chunk, error) {
	c, err := codec.DecodeAt(data, pos)
	if err != nil {
		return nil, err
	}
	if c.Size() != l.size {
		return nil, fmt.Errorf("decode chunk %v: size %d, world uses %d", pos, c.Size(), l.size)
	}
	return c, nil
}

// PollReads advances finished reads. A chunk that was read goes to
// rendering; any failure sends the position to generation, with a
// throttled warning unless the chunk simply was never saved.
func (l *Loader) PollReads() {
	for _, pos := range l.reading.Keys() {
		t, _ := l.reading.Get(pos)
		status, c, err := t.Poll()
		switch status {
		case task.Pending:
			continue
		case task.Ready:
			l.reading.Delete(pos)
			l.rendering.Set(pos, c)
		case task.Failed:
			l.reading.Delete(pos)
			l.generating.Set(pos, struct{}{})
			if !errors.Is(err, storage.ErrNotFound) {
				l.readWarn.Do(func() {
					l.log.Warn("chunk read failed, regenerating", "pos", pos, "error", err)
				})
			}
		}
	}
}

// Generate runs the generator for up to the generating cap of positions.
func (l *Loader) Generate() int {
	batch := l.generating.Head(l.cfg.Batching.Generating)
	for _, pos := range batch {
		l.generating.Delete(pos)
		l.rendering.Set(pos, l.deps.Generator.Generate(l.size, pos))
	}
	return len(batch)
}

// Render meshes up to the regime cap of chunks and spawns them into the
// scene. Budget left over rebuilds loaded meshes that are missing faces
// because their textures were not ready.
func (l *Loader) Render(r Regime) int {
	budget := l.renderCap(r)
	total := l.rendering.Len()
	batch := l.rendering.Head(budget)
	for _, pos := range batch {
		c, _ := l.rendering.Delete(pos)
		m, st := mesh.Build(c, l.deps.Textures, l.deps.Registry)
		l.deps.Scene.Spawn(c, m, st)
		l.loaded.Set(pos, c)
	}
	if len(batch) > 0 {
		l.log.Debug("rendered chunks", "count", len(batch), "pending", total)
	}

	budget -= len(batch)
	for _, e := range l.deps.Scene.Stale() {
		if budget <= 0 {
			break
		}
		if !l.loaded.Has(e.Pos) {
			continue
		}
		c := e.Chunk
		l.deps.Scene.Remesh(e, func() (*mesh.Mesh, mesh.BuildStats) {
			return mesh.Build(c, l.deps.Textures, l.deps.Registry)
		})
		budget--
	}
	return len(batch)
}

// Evict drops every loaded chunk outside the radius of center and despawns
// its entity. With saving enabled the chunk is encoded and queued.
func (l *Loader) Evict(center chunk.Position) int {
	evicted := 0
	for _, pos := range l.loaded.Keys() {
		if !chunk.OutsideRadius(pos, center, l.cfg.Radius) {
			continue
		}
		c, _ := l.loaded.Delete(pos)
		l.deps.Scene.Despawn(pos)
		if l.cfg.EnableSaving {
			l.saves.enqueue(pos, codec.Encode(c))
		}
		evicted++
	}
	if evicted > 0 {
		l.log.Debug("evicted chunks", "count", evicted, "center", center)
	}
	return evicted
}

// DispatchSaves hands queued chunks to the save pool in batches.
func (l *Loader) DispatchSaves(ctx context.Context) int {
	return l.saves.dispatch(ctx, l.cfg.Batching.Saving)
}

// DrainSaveResults applies every finished save without blocking.
func (l *Loader) DrainSaveResults() {
	l.saves.drain()
}

// SaveAll queues every loaded chunk for saving and dispatches the queue.
// The chunks stay loaded. It does nothing when saving is disabled.
func (l *Loader) SaveAll(ctx context.Context) int {
	if !l.cfg.EnableSaving {
		return 0
	}
	for _, pos := range l.loaded.Keys() {
		c, _ := l.loaded.Get(pos)
		l.saves.enqueue(pos, codec.Encode(c))
	}
	l.log.Info("saving all chunks", "count", l.loaded.Len())
	return l.DispatchSaves(ctx)
}

// Close saves every loaded chunk and waits until no save is queued or in
// flight and no read is still using the store, or ctx is done.
func (l *Loader) Close(ctx context.Context) error {
	l.SaveAll(ctx)
	if err := l.saves.flush(ctx, l.cfg.Batching.Saving); err != nil {
		return fmt.Errorf("flush saves: %w", err)
	}
	for _, pos := range l.reading.Keys() {
		t, _ := l.reading.Get(pos)
		if _, err := t.Wait(ctx); err != nil && ctx.Err() != nil {
			return fmt.Errorf("wait reads: %w", ctx.Err())
		}
	}
	return nil
}

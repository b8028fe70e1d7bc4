// Package engine drives the chunk pipeline on a fixed tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/loader"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/scene"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/world"
)

// editQueueSize bounds the edits waiting for the next tick.
const editQueueSize = 256

// statsEvery is how many ticks pass between stats log lines (~30 seconds).
const statsEvery = 600

// shutdownTimeout bounds the final flush Run does after its context ends.
var shutdownTimeout = 30 * time.Second

// ErrEditQueueFull is returned by QueueEdit when the scheduler is behind.
var ErrEditQueueFull = errors.New("edit queue full")

// Camera reports where the window of loaded chunks is centred.
type Camera interface {
	Position() mgl32.Vec3
}

// Deps are the collaborators an Engine is built from. The engine owns Store
// and closes it.
type Deps struct {
	Store     storage.Store
	Generator gen.Generator
	Textures  texture.Lookup
	Camera    Camera
	Registry  *block.Registry
}

type phase struct {
	name string
	run  func(ctx context.Context, center chunk.Position)
}

// Engine owns the loader, scene and world and advances them once per tick.
type Engine struct {
	cfg    *config.Config
	log    *slog.Logger
	camera Camera
	store  storage.Store

	scene  *scene.Scene
	loader *loader.Loader
	world  *world.World

	regime loader.Regime
	phases map[loader.Regime][]phase
	edits  chan world.Edit
	ticks  atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// New validates cfg and wires the pipeline. The engine starts in the bulk
// load regime.
func New(cfg *config.Config, deps Deps, log *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil || deps.Generator == nil || deps.Textures == nil || deps.Camera == nil {
		return nil, errors.New("engine deps: store, generator, textures and camera are required")
	}
	if deps.Registry == nil {
		deps.Registry = block.Default()
	}

	sc := scene.New()
	ld := loader.New(cfg, loader.Deps{
		Store:     deps.Store,
		Generator: deps.Generator,
		Textures:  deps.Textures,
		Scene:     sc,
		Registry:  deps.Registry,
	}, log)

	e := &Engine{
		cfg:    cfg,
		log:    log,
		camera: deps.Camera,
		store:  deps.Store,
		scene:  sc,
		loader: ld,
		world:  world.New(ld, sc, deps.Textures, deps.Registry, log),
		regime: loader.BulkLoad,
		edits:  make(chan world.Edit, editQueueSize),
	}
	e.phases = e.buildPhases()
	return e, nil
}

// buildPhases lists what each regime runs per tick, in order.
func (e *Engine) buildPhases() map[loader.Regime][]phase {
	track := phase{"track", func(_ context.Context, c chunk.Position) { e.loader.Track(c) }}
	poll := phase{"poll-reads", func(context.Context, chunk.Position) { e.loader.PollReads() }}
	generate := phase{"generate", func(context.Context, chunk.Position) { e.loader.Generate() }}

	return map[loader.Regime][]phase{
		loader.BulkLoad: {
			track,
			{"start-reads", func(ctx context.Context, _ chunk.Position) { e.loader.StartReads(ctx, loader.BulkLoad) }},
			poll,
			generate,
			{"render", func(context.Context, chunk.Position) { e.loader.Render(loader.BulkLoad) }},
			{"transition", func(context.Context, chunk.Position) { e.checkTransition() }},
		},
		loader.Steady: {
			track,
			{"start-reads", func(ctx context.Context, _ chunk.Position) { e.loader.StartReads(ctx, loader.Steady) }},
			poll,
			generate,
			{"render", func(context.Context, chunk.Position) { e.loader.Render(loader.Steady) }},
			{"evict", func(_ context.Context, c chunk.Position) { e.loader.Evict(c) }},
			{"dispatch-saves", func(ctx context.Context, _ chunk.Position) { e.loader.DispatchSaves(ctx) }},
			{"drain-saves", func(context.Context, chunk.Position) { e.loader.DrainSaveResults() }},
			{"apply-edits", func(context.Context, chunk.Position) { e.applyEdits() }},
		},
	}
}

func (e *Engine) checkTransition() {
	if !e.loader.Settled() {
		return
	}
	e.regime = loader.Steady
	e.log.Info("initial chunks loaded", "ticks", e.ticks.Load(), "loaded", e.loader.Stats().Loaded)
}

func (e *Engine) applyEdits() {
	for {
		select {
		case ed := <-e.edits:
			if err := e.world.Apply(ed); err != nil {
				e.log.Warn("apply edit", "kind", ed.Kind, "error", err)
			}
		default:
			return
		}
	}
}

// Tick runs the current regime's phases once.
func (e *Engine) Tick(ctx context.Context) {
	center := chunk.PositionOf(e.camera.Position(), e.loader.Size())
	for _, p := range e.phases[e.regime] {
		p.run(ctx, center)
	}
	n := e.ticks.Add(1)
	if n%statsEvery == 0 {
		e.log.Debug("chunk stats", "regime", e.regime, "stats", e.loader.Stats())
	}
}

// Run ticks at the configured rate until ctx is cancelled, then closes the
// engine.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval())
	defer ticker.Stop()

	e.log.Info("engine started",
		"radius", e.cfg.Radius,
		"chunkSize", e.cfg.ChunkSize,
		"tickRate", e.cfg.TickRate,
		"saving", e.cfg.EnableSaving,
	)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine shutting down")
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return e.Close(closeCtx)
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// QueueEdit schedules ed for the next steady tick. It is safe to call from
// any goroutine.
func (e *Engine) QueueEdit(ed world.Edit) error {
	select {
	case e.edits <- ed:
		return nil
	default:
		return ErrEditQueueFull
	}
}

// SaveAll writes every loaded chunk without unloading it. Call it from the
// goroutine that ticks the engine.
func (e *Engine) SaveAll(ctx context.Context) int {
	return e.loader.SaveAll(ctx)
}

// Close flushes all chunks and closes the store. Later calls return the
// first result.
func (e *Engine) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		var errs []error
		if err := e.loader.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		e.closeErr = errors.Join(errs...)
		st := e.loader.Stats()
		e.log.Info("engine stopped", "loaded", st.Loaded, "failedSaves", st.FailedSave)
	})
	return e.closeErr
}

func (e *Engine) Regime() loader.Regime {
	return e.regime
}

func (e *Engine) Stats() loader.Stats {
	return e.loader.Stats()
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) World() *world.World {
	return e.world
}

// Ticks returns how many ticks have run.
func (e *Engine) Ticks() uint64 {
	return e.ticks.Load()
}

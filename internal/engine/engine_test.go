package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/block"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/config"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/gen"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/loader"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/texture"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/world"
)

type testCamera struct {
	mu  sync.Mutex
	pos mgl32.Vec3
}

func (c *testCamera) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *testCamera) moveTo(p mgl32.Vec3) {
	c.mu.Lock()
	c.pos = p
	c.mu.Unlock()
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Radius = 1
	cfg.ChunkSize = 4
	cfg.Storage.Backend = config.BackendMemory
	cfg.TickRate = 200
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) (*Engine, *testCamera, *storage.MemoryStore) {
	t.Helper()
	cam := &testCamera{pos: mgl32.Vec3{1, 1, 1}}
	store := storage.NewMemoryStore()
	e, err := New(cfg, Deps{
		Store:     store,
		Generator: gen.NewFlatGenerator(),
		Textures:  texture.NewGridAtlas(block.Default(), 16, 8),
		Camera:    cam,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, cam, store
}

// tickUntil ticks e until done reports true.
func tickUntil(t *testing.T, e *Engine, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !done() {
		e.Tick(context.Background())
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached after %d ticks:\n%v", e.Ticks(), e.Stats())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ChunkSize = 0
	_, err := New(cfg, Deps{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("New() with chunk size 0 returned no error")
	}
}

func TestNewRequiresDeps(t *testing.T) {
	_, err := New(testConfig(), Deps{Store: storage.NewMemoryStore()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("New() without generator returned no error")
	}
}

func TestBulkLoadThenSteady(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())
	if e.Regime() != loader.BulkLoad {
		t.Fatalf("initial regime = %v, want bulk-load", e.Regime())
	}
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	if got := e.Stats().Loaded; got != 27 {
		t.Errorf("Loaded = %d, want 27", got)
	}
	if got := e.Scene().Len(); got != 27 {
		t.Errorf("scene.Len() = %d, want 27", got)
	}
}

func TestCameraMoveEvictsAndSaves(t *testing.T) {
	e, cam, store := newTestEngine(t, testConfig())
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	// Three chunks of 4 blocks along x leaves no overlap with the old window.
	cam.moveTo(mgl32.Vec3{13, 1, 1})
	tickUntil(t, e, func() bool {
		st := e.Stats()
		return st.Loaded == 27 && st.Unloaded == 0 && st.Queued == 0 && st.Saving == 0 && store.Len() == 27
	})
	if _, ok := e.World().Block(0, 0, 0); ok {
		t.Error("block of the old window still loaded")
	}
}

func TestQueuedEditApplied(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	ed := world.Edit{Kind: world.EditSet, Pos: world.BlockPos{X: 2, Y: 5, Z: 2}, State: block.Glass}
	if err := e.QueueEdit(ed); err != nil {
		t.Fatalf("QueueEdit() error = %v", err)
	}
	if got, _ := e.World().Block(2, 5, 2); got == block.Glass {
		t.Fatal("edit applied before a tick")
	}
	e.Tick(context.Background())
	if got, _ := e.World().Block(2, 5, 2); got != block.Glass {
		t.Errorf("Block(2,5,2) = %v, want glass", got)
	}
}

func TestQueueEditFull(t *testing.T) {
	e, _, _ := newTestEngine(t, testConfig())
	var err error
	for i := 0; i <= editQueueSize; i++ {
		err = e.QueueEdit(world.Edit{Kind: world.EditSet})
	}
	if !errors.Is(err, ErrEditQueueFull) {
		t.Errorf("QueueEdit() past capacity error = %v, want ErrEditQueueFull", err)
	}
}

func TestCloseSavesLoaded(t *testing.T) {
	e, _, store := newTestEngine(t, testConfig())
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	if err := e.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.Len() != 27 {
		t.Errorf("store holds %d chunks, want 27", store.Len())
	}
	if err := e.Close(context.Background()); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestCloseWithSavingDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableSaving = false
	e, _, store := newTestEngine(t, cfg)
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	if err := e.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d chunks, want 0", store.Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _, store := newTestEngine(t, testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Ticks() == 0 {
		t.Error("Run() never ticked")
	}
	if store.Len() != e.Stats().Loaded {
		t.Errorf("store holds %d chunks, loaded %d", store.Len(), e.Stats().Loaded)
	}
}

// stuckStore never finishes a save.
type stuckStore struct {
	*storage.MemoryStore
}

func (stuckStore) Save(context.Context, []storage.Record) error {
	select {}
}

func TestRunShutdownBounded(t *testing.T) {
	defer func(d time.Duration) { shutdownTimeout = d }(shutdownTimeout)
	shutdownTimeout = 50 * time.Millisecond

	e, err := New(testConfig(), Deps{
		Store:     stuckStore{storage.NewMemoryStore()},
		Generator: gen.NewFlatGenerator(),
		Textures:  texture.NewGridAtlas(block.Default(), 16, 8),
		Camera:    &testCamera{pos: mgl32.Vec3{1, 1, 1}},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tickUntil(t, e, func() bool { return e.Regime() == loader.Steady })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err = e.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Errorf("Run() took %v to stop with a stuck store", took)
	}
}
